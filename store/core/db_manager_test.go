package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConnectionPool(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "watrace.db")

	pool := NewConnectionPool()
	defer pool.CloseAll()

	// 文件不存在时自动创建并迁移
	db, err := pool.GetConnection(dbPath)
	if err != nil {
		t.Fatalf("GetConnection 失败: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("数据库文件应该已创建: %v", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("读取版本失败: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("期望版本 %d, 实际得到 %d", SchemaVersion, version)
	}

	for _, table := range []string{"chats", "persons", "messages"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("缺少表 %s: %v", table, err)
		}
	}

	var idx int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND tbl_name='messages' AND name LIKE 'idx_messages_%'").Scan(&idx); err != nil {
		t.Fatalf("查询索引失败: %v", err)
	}
	if idx != 3 {
		t.Errorf("期望 3 个索引, 实际得到 %d", idx)
	}

	// 连接复用
	db2, err := pool.GetConnection(dbPath)
	if err != nil {
		t.Fatalf("获取缓存连接失败: %v", err)
	}
	if db != db2 {
		t.Error("对于相同的路径，连接池应该返回相同的实例")
	}

	if err := pool.CloseConnection(dbPath); err != nil {
		t.Fatalf("CloseConnection 失败: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("数据库连接应该已关闭")
	}

	// 重新打开时迁移应当是幂等的
	db3, err := pool.GetConnection(dbPath)
	if err != nil {
		t.Fatalf("重新打开失败: %v", err)
	}
	if err := Migrate(db3); err != nil {
		t.Fatalf("重复迁移失败: %v", err)
	}
}

func TestMigrate_NewerVersion(t *testing.T) {
	pool := NewConnectionPool()
	defer pool.CloseAll()

	path := filepath.Join(t.TempDir(), "future.db")
	db, err := pool.GetConnection(path)
	if err != nil {
		t.Fatalf("GetConnection 失败: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("设置版本失败: %v", err)
	}
	if err := Migrate(db); err == nil {
		t.Error("更高版本的数据库应该报错")
	}
}

func TestWatcher_Settle(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher 失败: %v", err)
	}
	defer w.Stop()

	got := make(chan string, 4)
	w.AddCallback(func(path string) { got <- path })
	w.Start()

	target := filepath.Join(dir, "chat.txt")
	if err := os.WriteFile(target, []byte("1/1/2024, 10:00 - A: hi\n"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("打开失败: %v", err)
	}
	_, _ = f.WriteString("1/1/2024, 10:01 - B: hey\n")
	f.Close()

	select {
	case p := <-got:
		if p != target {
			t.Errorf("期望 %s, 实际得到 %s", target, p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("等待回调超时")
	}

	// 连续写入只回调一次
	select {
	case p := <-got:
		t.Errorf("不应重复回调: %s", p)
	case <-time.After(300 * time.Millisecond):
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop 失败: %v", err)
	}
}
