package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sql_range_backend/internal/config"
	"sql_range_backend/internal/repository"
	"sql_range_backend/internal/util"
	"time"
)

// hintDef 提示内容写死在代码里，不进库
type hintDef struct {
	ID      int
	Title   string
	Content string
}

var hintLadder = []hintDef{
	{
		ID:      1,
		Title:   "Table Enumeration",
		Content: `Standard table discovery is blocked. Try using UNION with a known table to enumerate others. Example: SELECT name FROM products WHERE 1=0 UNION SELECT name FROM ??? WHERE type="table"`,
	},
	{
		ID:      2,
		Title:   "Finding Hidden Tables",
		Content: "Look for tables with names like: admin_panel, security_audit_logs, encrypted_vault, system_internal_config. The security logs contain valuable information about the flag storage.",
	},
	{
		ID:      3,
		Title:   "Flag Assembly",
		Content: `The flag is in system_internal_config table, split into segments with config_type="flag_segment". Order by config_id (A001-A007), concatenate config_data values, then base64 decode the result.`,
	},
}

// HintView 未解锁的条目不带 Content，防止直接从响应里白嫖
type HintView struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content,omitempty"`
	Unlocked  bool   `json:"unlocked"`
	UnlocksAt *int64 `json:"unlocksAt,omitempty"`
}

// HintService 三级提示阶梯：1 随开随解，2 在 1 之后延迟解锁，3 在 2 之后延迟解锁。
// 解锁单调不可逆，hints_opened 只追加。
type HintService struct {
	HintRepo *repository.HintStateRepository
	Cfg      *config.Config

	userLocks *util.KeyedMutex
	now       func() time.Time
}

func NewHintService(hintRepo *repository.HintStateRepository, cfg *config.Config) *HintService {
	return &HintService{
		HintRepo:  hintRepo,
		Cfg:       cfg,
		userLocks: util.NewKeyedMutex(),
		now:       time.Now,
	}
}

// GetHints 返回三条提示的当前视图
func (s *HintService) GetHints(userID uint) ([]HintView, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	return s.buildViews(userID)
}

// UnlockHint 解锁成功后返回刷新过的完整列表，前端不用再发一次 GET
func (s *HintService) UnlockHint(userID uint, hintID int) ([]HintView, error) {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	if hintID < 1 || hintID > len(hintLadder) {
		return nil, util.ErrInvalidHintID
	}

	state, err := s.HintRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	opened := decodeOpened(state.HintsOpened)
	if containsHint(opened, hintID) {
		return nil, util.ErrHintAlreadyUnlocked
	}

	nowMs := s.now().UnixMilli()

	switch hintID {
	case 2:
		if state.FirstHintOpenedAt == nil {
			return nil, util.ErrHintLocked
		}
		if gate := *state.FirstHintOpenedAt + s.Cfg.Challenge.SecondHintDelay().Milliseconds(); nowMs < gate {
			return nil, remainingError(gate, nowMs)
		}
	case 3:
		if state.SecondHintOpenedAt == nil {
			return nil, util.ErrHintLocked
		}
		if gate := *state.SecondHintOpenedAt + s.Cfg.Challenge.ThirdHintDelay().Milliseconds(); nowMs < gate {
			return nil, remainingError(gate, nowMs)
		}
	}

	opened = append(opened, hintID)
	encoded, err := json.Marshal(opened)
	if err != nil {
		return nil, err
	}
	state.HintsOpened = string(encoded)

	// 3 号提示后面没有下游门禁，不用记时间
	if hintID == 1 && state.FirstHintOpenedAt == nil {
		state.FirstHintOpenedAt = &nowMs
	}
	if hintID == 2 && state.SecondHintOpenedAt == nil {
		state.SecondHintOpenedAt = &nowMs
	}

	if err := s.HintRepo.Save(state); err != nil {
		return nil, err
	}

	return s.buildViews(userID)
}

func (s *HintService) buildViews(userID uint) ([]HintView, error) {
	state, err := s.HintRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	opened := decodeOpened(state.HintsOpened)
	views := make([]HintView, 0, len(hintLadder))

	for _, h := range hintLadder {
		view := HintView{ID: h.ID, Title: h.Title}

		if containsHint(opened, h.ID) {
			view.Unlocked = true
			view.Content = h.Content
			views = append(views, view)
			continue
		}

		// 前置提示没开过的话连解锁时间都不给，保持"永久锁定"的观感
		switch h.ID {
		case 2:
			if state.FirstHintOpenedAt != nil {
				at := *state.FirstHintOpenedAt + s.Cfg.Challenge.SecondHintDelay().Milliseconds()
				view.UnlocksAt = &at
			}
		case 3:
			if state.SecondHintOpenedAt != nil {
				at := *state.SecondHintOpenedAt + s.Cfg.Challenge.ThirdHintDelay().Milliseconds()
				view.UnlocksAt = &at
			}
		}
		views = append(views, view)
	}

	return views, nil
}

func remainingError(gateMs, nowMs int64) error {
	seconds := int64(math.Ceil(float64(gateMs-nowMs) / 1000.0))
	return fmt.Errorf("Hint unlocks in %d seconds", seconds)
}

func decodeOpened(raw string) []int {
	if raw == "" {
		return nil
	}
	var opened []int
	if err := json.Unmarshal([]byte(raw), &opened); err != nil {
		return nil
	}
	return opened
}

func containsHint(opened []int, id int) bool {
	for _, v := range opened {
		if v == id {
			return true
		}
	}
	return false
}
