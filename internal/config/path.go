package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultConfigDir はホーム直下の設定ディレクトリ名
	DefaultConfigDir = ".mcp-demo"
	// DefaultConfigFile は設定ファイルが見つからない場合に使うファイル名
	DefaultConfigFile = "config.json"
)

// configFileCandidates は設定ディレクトリ内で探すファイル名（優先順）
var configFileCandidates = []string{DefaultConfigFile, "config.yaml", "config.yml"}

// ResolvePath はファイルツールのルートなどを絶対パスに正規化する
// シンボリックリンクが解決できない場合（存在しないパスなど）は絶対パスを返す
func ResolvePath(path string) (string, error) {
	expanded, err := ExpandTilde(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand tilde: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// ExpandTilde は先頭の "~" をホームディレクトリに展開する
// "~user" 形式は対象外
func ExpandTilde(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, rest), nil
}

// GetDefaultConfigPath は ~/.mcp-demo 内の設定ファイルパスを返す
// config.json, config.yaml, config.yml の順に探し、どれもなければ config.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(home, DefaultConfigDir)
	for _, name := range configFileCandidates {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}
