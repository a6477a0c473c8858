package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bankingrestapi/bank/internal/domain"
)

func parseAccountIDArg(raw string) (domain.AccountID, error) {
	id, err := domain.ParseAccountID(raw)
	if err != nil {
		return 0, fmt.Errorf("account must be a positive number: %w", err)
	}

	return id, nil
}

func parseAmountArg(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}

	return amount, nil
}
