package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DaysPerMonth is the fixed divisor of the monthly rate, regardless of the
// calendar length of the month.
const DaysPerMonth = 30

type CalculationInput struct {
	CompensationRate  int64
	DaysWorked        int
	DaysAbsent        int
	TotalDaysInWindow int
	Incentive         int64
	Arrears           int64
	ExtraPay          int64
}

type Calculation struct {
	Gross                   int64
	Final                   int64
	TotalDaysGenerated      int
	DaysAvailableToGenerate int
}

// Calculate prorates the monthly rate over the days worked, rounding half
// away from zero, and adds the adjustments.
func Calculate(in CalculationInput) Calculation {
	var gross int64
	if in.DaysWorked > 0 {
		gross = decimal.NewFromInt(in.CompensationRate).
			Mul(decimal.NewFromInt(int64(in.DaysWorked))).
			Div(decimal.NewFromInt(DaysPerMonth)).
			Round(0).
			IntPart()
	}

	available := in.TotalDaysInWindow - in.DaysWorked - in.DaysAbsent
	if available < 0 {
		available = 0
	}

	return Calculation{
		Gross:                   gross,
		Final:                   gross + in.Incentive + in.Arrears + in.ExtraPay,
		TotalDaysGenerated:      in.DaysWorked + in.DaysAbsent,
		DaysAvailableToGenerate: available,
	}
}

// Adjustment is a validated edit of an invoice.
type Adjustment struct {
	StartDate        time.Time
	EndDate          time.Time
	DaysWorked       int
	DaysAbsent       int
	Incentive        int64
	Arrears          int64
	ExtraPay         int64
	CompensationRate int64
	EditedBy         *uuid.UUID
}

func (a Adjustment) CalculationInput(totalDaysInWindow int) CalculationInput {
	return CalculationInput{
		CompensationRate:  a.CompensationRate,
		DaysWorked:        a.DaysWorked,
		DaysAbsent:        a.DaysAbsent,
		TotalDaysInWindow: totalDaysInWindow,
		Incentive:         a.Incentive,
		Arrears:           a.Arrears,
		ExtraPay:          a.ExtraPay,
	}
}

// ApplyAdjustment returns inv with the edit and its calculation applied.
// Identity, period and document fields are left untouched.
func ApplyAdjustment(inv Invoice, calc Calculation, adj Adjustment) Invoice {
	inv.StartDate = adj.StartDate
	inv.EndDate = adj.EndDate
	inv.DaysWorked = adj.DaysWorked
	inv.DaysAbsent = adj.DaysAbsent
	inv.Incentive = adj.Incentive
	inv.Arrears = adj.Arrears
	inv.ExtraPay = adj.ExtraPay
	inv.CompensationRate = adj.CompensationRate
	inv.ComputedSalary = calc.Final
	inv.TotalDaysGenerated = calc.TotalDaysGenerated
	inv.DaysAvailableToGenerate = calc.DaysAvailableToGenerate
	inv.ModifiedBy = adj.EditedBy
	inv.Status = StatusEdited
	return inv
}
