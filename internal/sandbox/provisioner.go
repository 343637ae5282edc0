package sandbox

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Provisioner 管理关卡数据库：一份不可变模板，按用户首次访问时整体拷贝出独立副本。
// 副本之间以及副本与模板之间永不同步，用户间状态不会串。
type Provisioner struct {
	dataDir      string
	templatePath string

	mu      sync.Mutex
	handles map[uint]*sql.DB
	creates map[uint]*sync.Mutex
}

func NewProvisioner(dataDir string) (*Provisioner, error) {
	p := &Provisioner{
		dataDir:      dataDir,
		templatePath: filepath.Join(dataDir, "challenge_template.db"),
		handles:      make(map[uint]*sql.DB),
		creates:      make(map[uint]*sync.Mutex),
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if err := p.buildTemplate(); err != nil {
		return nil, err
	}

	return p, nil
}

// buildTemplate 幂等：模板文件已存在时跳过。先写临时文件再改名，避免半成品模板。
func (p *Provisioner) buildTemplate() error {
	if _, err := os.Stat(p.templatePath); err == nil {
		return nil
	}

	tmpPath := p.templatePath + ".tmp"
	os.Remove(tmpPath)

	db, err := sql.Open("sqlite3", tmpPath)
	if err != nil {
		return fmt.Errorf("open template database: %w", err)
	}

	if _, err := db.Exec(challengeSchema); err != nil {
		db.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("seed template database: %w", err)
	}

	if err := db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close template database: %w", err)
	}

	if err := os.Rename(tmpPath, p.templatePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install template database: %w", err)
	}

	return nil
}

func (p *Provisioner) userDBPath(userID uint) string {
	return filepath.Join(p.dataDir, fmt.Sprintf("challenge_%d.db", userID))
}

// GetOrCreate 返回某用户的副本句柄，首次访问时从模板字节拷贝。
// 同一用户并发首访靠 per-user 锁串行化；不同用户互不争锁。
func (p *Provisioner) GetOrCreate(userID uint) (*sql.DB, error) {
	p.mu.Lock()
	if db, ok := p.handles[userID]; ok {
		p.mu.Unlock()
		return db, nil
	}
	lock, ok := p.creates[userID]
	if !ok {
		lock = &sync.Mutex{}
		p.creates[userID] = lock
	}
	p.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	p.mu.Lock()
	if db, ok := p.handles[userID]; ok {
		p.mu.Unlock()
		return db, nil
	}
	p.mu.Unlock()

	path := p.userDBPath(userID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := copyFile(p.templatePath, path); err != nil {
			return nil, fmt.Errorf("fork challenge database for user %d: %w", userID, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open challenge database for user %d: %w", userID, err)
	}
	// 同一用户的重叠请求交给引擎自身的锁串行
	db.SetMaxOpenConns(1)

	p.mu.Lock()
	p.handles[userID] = db
	p.mu.Unlock()

	return db, nil
}

// Close 释放所有副本句柄，进程退出时调用
func (p *Provisioner) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, db := range p.handles {
		db.Close()
		delete(p.handles, id)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
