package service

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Clock は現在時刻を返す（テストで固定するため注入可能）
type Clock func() time.Time

// Operation は四則演算の種類
type Operation string

// Operation定数
const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

// Symbol は演算子の表示記号を返す
func (o Operation) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return "?"
	}
}

// Calculation は計算結果
type Calculation struct {
	Operation Operation
	A         float64
	B         float64
	Result    float64
}

// Format は "Result: {a} {sym} {b} = {result}" 形式の文字列を返す
func (c *Calculation) Format() string {
	return "Result: " + FormatNumber(c.A) + " " + c.Operation.Symbol() + " " +
		FormatNumber(c.B) + " = " + FormatNumber(c.Result)
}

// FormatNumber は数値をJavaScriptの数値表記と同じ形式で返す
// 整数値は小数点なし、1e21以上または1e-6未満は指数表記
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // -0 も "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Goは指数を2桁以上で出力するため先頭の0を落とす（1e-07 → 1e-7）
		s = strings.Replace(s, "e-0", "e-", 1)
		s = strings.Replace(s, "e+0", "e+", 1)
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FileEntry はディレクトリ一覧の1件
type FileEntry struct {
	Name  string // ルートからではなく一覧対象ディレクトリからの相対パス
	IsDir bool
	Size  int64
}
