// Package emi computes equated monthly installment schedules. This is
// the authoritative computation: schedules are generated once at
// approval time and persisted per installment.
package emi

import (
	"math"
	"time"
)

// Installment is one row of an amortization schedule.
type Installment struct {
	Sequence  int       `json:"sequence"`
	DueDate   time.Time `json:"due_date"`
	Amount    float64   `json:"amount"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Balance   float64   `json:"balance"`
}

// Monthly returns the fixed installment for a reducing-balance loan of
// the given principal, annual interest rate (percent) and term in
// months, rounded to 2 decimals. A zero rate degrades to a straight
// principal split.
func Monthly(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	if annualRate == 0 {
		return round2(principal / float64(months))
	}
	r := annualRate / 12 / 100
	f := math.Pow(1+r, float64(months))
	return round2(principal * r * f / (f - 1))
}

// Schedule builds the full installment schedule starting one month
// after start. Intermediate installments carry the fixed amount; the
// last absorbs rounding so principal components sum exactly to the
// loan principal.
func Schedule(principal, annualRate float64, months int, start time.Time) []Installment {
	if months <= 0 || principal <= 0 {
		return nil
	}

	fixed := Monthly(principal, annualRate, months)
	r := annualRate / 12 / 100
	balance := principal

	schedule := make([]Installment, 0, months)
	for i := 1; i <= months; i++ {
		interest := round2(balance * r)
		principalPart := round2(fixed - interest)
		amount := fixed

		if i == months {
			// final installment clears the remaining balance
			principalPart = round2(balance)
			amount = round2(principalPart + interest)
		}

		balance = round2(balance - principalPart)
		schedule = append(schedule, Installment{
			Sequence:  i,
			DueDate:   start.AddDate(0, i, 0),
			Amount:    amount,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return schedule
}

// TotalPayable returns the sum of all installment amounts.
func TotalPayable(schedule []Installment) float64 {
	var total float64
	for _, in := range schedule {
		total += in.Amount
	}
	return round2(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
