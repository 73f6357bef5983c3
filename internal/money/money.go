package money

import "github.com/shopspring/decimal"

// Round2 округляет сумму до 2 знаков (half away from zero).
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Cost считает стоимость сессии: (минуты/60) * часовой тариф, округлённо до 2 знаков.
func Cost(durationMinutes int, hourlyRate float64) float64 {
	cost := decimal.NewFromFloat(hourlyRate).
		Mul(decimal.NewFromInt(int64(durationMinutes))).
		Div(decimal.NewFromInt(60))
	f, _ := cost.Round(2).Float64()
	return f
}

// Add складывает две суммы без накопления плавающей ошибки.
func Add(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Sub вычитает b из a.
func Sub(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// Sum суммирует список сумм (для сверки баланса по транзакциям).
func Sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Round(2).Float64()
	return f
}
