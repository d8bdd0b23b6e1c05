package model

import (
	"errors"
	"time"
)

// CreatedLayout はNote.Createdの表示形式（ミリ秒精度のISO8601 UTC）
const CreatedLayout = "2006-01-02T15:04:05.000Z"

// Note はプロセス内に保持されるノートを表す
// 作成後は更新・削除されない
type Note struct {
	ID      int64     `json:"id"`      // 1始まり、単調増加
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"` // 作成時刻（UTC）
}

// CreatedString はCreatedをISO8601（ミリ秒精度）で返す
func (n *Note) CreatedString() string {
	return n.Created.UTC().Format(CreatedLayout)
}

// Validate はストアから返されたNoteの整合性を確認する
// タイトル・本文は空文字列も許可する
func (n *Note) Validate() error {
	if n.ID <= 0 {
		return errors.New("ID must be positive")
	}
	if n.Created.IsZero() {
		return errors.New("Created must be set")
	}
	return nil
}
