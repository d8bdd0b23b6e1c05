package config

import (
	"strings"

	"github.com/google/uuid"
)

// NamespacePrefix はストアのnamespaceの接頭辞
const NamespacePrefix = "mcp-demo-"

// GenerateNamespace はプロセスごとに一意なストアのnamespaceを生成する
// 形式: "mcp-demo-{uuidの先頭12桁}"
// 外部ストア（Qdrant/Redis）を複数プロセスで共有してもノートが混ざらない
func GenerateNamespace() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return NamespacePrefix + id[:12]
}
