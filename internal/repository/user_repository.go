package repository

import (
	"sql_range_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

// FindByUsernameOrEmail 登录入口允许用户名或邮箱
func (r *UserRepository) FindByUsernameOrEmail(identity string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("username = ? OR email = ?", identity, identity).First(&user).Error
	return &user, err
}

func (r *UserRepository) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CountAll() (total int64, admins int64, err error) {
	if err = r.DB.Model(&model.User{}).Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.User{}).Where("is_admin = ?", true).Count(&admins).Error
	return
}

// UserOverview 管理后台的用户列表行：用户信息 + 闯关状态 + 查询统计
type UserOverview struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	CreatedAt      string `json:"createdAt"`
	IsAdmin        bool   `json:"isAdmin"`
	Started        bool   `json:"started"`
	StartTime      *int64 `json:"startTime"`
	Completed      bool   `json:"completed"`
	CompletionTime *int64 `json:"completionTime"`
	Score          *int   `json:"score"`
	QueryCount     int64  `json:"queryCount"`
	FlagFoundCount int64  `json:"flagFoundCount"`
}

func (r *UserRepository) ListOverview() ([]UserOverview, error) {
	var rows []UserOverview
	err := r.DB.Raw(`
		SELECT
			u.id,
			u.username,
			u.email,
			u.created_at,
			u.is_admin,
			COALESCE(cs.started, 0) AS started,
			cs.start_time,
			COALESCE(cs.completed, 0) AS completed,
			cs.completion_time,
			cs.score,
			(SELECT COUNT(*) FROM query_logs ql WHERE ql.user_id = u.id) AS query_count,
			(SELECT COUNT(*) FROM query_logs ql WHERE ql.user_id = u.id AND ql.flag_found = 1) AS flag_found_count
		FROM users u
		LEFT JOIN challenge_status cs ON u.id = cs.user_id
		WHERE u.deleted_at IS NULL
		ORDER BY u.created_at DESC
	`).Scan(&rows).Error
	return rows, err
}
