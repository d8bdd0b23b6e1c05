package service

// calculatorService はCalculatorServiceの実装
type calculatorService struct{}

// NewCalculatorService はCalculatorServiceの新しいインスタンスを作成
func NewCalculatorService() CalculatorService {
	return &calculatorService{}
}

// Calculate は四則演算を行う
func (s *calculatorService) Calculate(op string, a, b float64) (*Calculation, error) {
	c := &Calculation{Operation: Operation(op), A: a, B: b}

	switch c.Operation {
	case OpAdd:
		c.Result = a + b
	case OpSubtract:
		c.Result = a - b
	case OpMultiply:
		c.Result = a * b
	case OpDivide:
		if b == 0 {
			return nil, NewError(ErrInvalidOperation, "division by zero is not allowed")
		}
		c.Result = a / b
	default:
		return nil, NewError(ErrUnknownOperation, "unknown operation: %s", op)
	}

	return c, nil
}
