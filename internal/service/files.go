package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// fileService はFileServiceの実装
// すべてのパスはroot配下に解決され、外に出るパスは拒否する
type fileService struct {
	root string
}

// NewFileService はFileServiceの新しいインスタンスを作成
// rootが空の場合はカレントディレクトリ
func NewFileService(root string) (FileService, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve files root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat files root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("files root is not a directory: %s", abs)
	}
	return &fileService{root: abs}, nil
}

// resolve はrootからの相対パスまたはroot配下の絶対パスを絶対パスに変換する
func (s *fileService) resolve(path string) (string, error) {
	if path == "" {
		path = "."
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return "", NewError(ErrPathOutsideRoot, "path must not contain '..': %s", path)
		}
	}

	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.root, path)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", NewError(ErrPathOutsideRoot, "path is outside the allowed root: %s", path)
	}
	return full, nil
}

// Read はファイルの内容を返す
func (s *fileService) Read(ctx context.Context, path string) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	slog.DebugContext(ctx, "read file", "path", full, "bytes", len(data))
	return string(data), nil
}

// Write はファイルを作成または上書きする（親ディレクトリも作成）
func (s *fileService) Write(ctx context.Context, path, content string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	slog.DebugContext(ctx, "wrote file", "path", full, "bytes", len(content))
	return nil
}

// List はディレクトリの内容を名前順で返す
// patternを指定した場合はdoublestarのglob（例: "**/*.md"）に一致するものだけを返す
func (s *fileService) List(ctx context.Context, dir, pattern string) ([]FileEntry, error) {
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	fsys := os.DirFS(full)

	var names []string
	if pattern == "" {
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return nil, fmt.Errorf("failed to list directory: %w", err)
		}
		for _, e := range entries {
			names = append(names, e.Name())
		}
	} else {
		if !doublestar.ValidatePattern(pattern) {
			return nil, NewError(ErrInvalidArguments, "invalid pattern: %s", pattern)
		}
		names, err = doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to match pattern: %w", err)
		}
	}
	sort.Strings(names)

	result := make([]FileEntry, 0, len(names))
	for _, name := range names {
		info, err := fs.Stat(fsys, name)
		if err != nil {
			continue
		}
		entry := FileEntry{Name: name, IsDir: info.IsDir()}
		if !entry.IsDir {
			entry.Size = info.Size()
		}
		result = append(result, entry)
	}
	return result, nil
}
