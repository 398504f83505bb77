// Package migrations は起動時に適用する SQL マイグレーションを埋め込む。
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
