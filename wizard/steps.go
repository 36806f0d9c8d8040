package wizard

import (
	"fmt"

	"github.com/rgcouk/biglittle/utils"
)

type Step int

const (
	StepUnitSelection Step = iota
	StepDetails
	StepPersonal
	StepPayment
	StepReview
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepUnitSelection:
		return "unit_selection"
	case StepDetails:
		return "details"
	case StepPersonal:
		return "personal"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// Form accumulates everything the customer enters across the wizard steps.
type Form struct {
	UnitID        uint   `json:"unit_id"`
	MoveInDate    string `json:"move_in_date"`
	DurationHint  string `json:"duration_hint"`
	Notes         string `json:"notes"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"payment_method"`
	AgreeTerms    bool   `json:"agree_terms"`
}

// validateStep is the gate for advancing past the given step. Backward moves
// are never gated.
func validateStep(step Step, f Form) error {
	switch step {
	case StepUnitSelection:
		if f.UnitID == 0 {
			return fmt.Errorf("select a unit to continue")
		}
	case StepDetails:
		if f.MoveInDate == "" {
			return fmt.Errorf("move-in date is required")
		}
		if _, err := utils.ParseDate(f.MoveInDate); err != nil {
			return fmt.Errorf("move-in date must be YYYY-MM-DD")
		}
	case StepPersonal:
		if f.FirstName == "" || f.LastName == "" || f.Email == "" || f.Phone == "" {
			return fmt.Errorf("all personal details are required")
		}
		if !utils.ValidEmail(f.Email) {
			return fmt.Errorf("enter a valid email address")
		}
	case StepPayment:
		if f.PaymentMethod == "" {
			return fmt.Errorf("choose a payment method")
		}
	case StepReview:
		if !f.AgreeTerms {
			return fmt.Errorf("you must agree to the terms to book")
		}
	}
	return nil
}

// mergeForm overlays the non-zero fields of patch onto base. Before review,
// AgreeTerms can be ticked but never unticked by a patch that simply omits
// it; on review (verbatimTerms) the flag is taken as posted so unticking the
// box works.
func mergeForm(base, patch Form, verbatimTerms bool) Form {
	if patch.UnitID != 0 {
		base.UnitID = patch.UnitID
	}
	if patch.MoveInDate != "" {
		base.MoveInDate = patch.MoveInDate
	}
	if patch.DurationHint != "" {
		base.DurationHint = patch.DurationHint
	}
	if patch.Notes != "" {
		base.Notes = patch.Notes
	}
	if patch.FirstName != "" {
		base.FirstName = patch.FirstName
	}
	if patch.LastName != "" {
		base.LastName = patch.LastName
	}
	if patch.Email != "" {
		base.Email = patch.Email
	}
	if patch.Phone != "" {
		base.Phone = patch.Phone
	}
	if patch.PaymentMethod != "" {
		base.PaymentMethod = patch.PaymentMethod
	}
	if verbatimTerms {
		base.AgreeTerms = patch.AgreeTerms
	} else if patch.AgreeTerms {
		base.AgreeTerms = true
	}
	return base
}
