package migrations

import "embed"

// FS 包含故事库的 SQLite 迁移脚本。
//
//go:embed *.sql
var FS embed.FS
