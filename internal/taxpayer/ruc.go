// Package taxpayer validates Peruvian taxpayer identifiers.
package taxpayer

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRUCLength     = errors.New("invalid_ruc_length")
	ErrInvalidRUCCharacters = errors.New("invalid_ruc_characters")
	ErrInvalidRUCCheckDigit = errors.New("invalid_ruc_check_digit")
)

// RUCLength is the number of digits of a RUC.
const RUCLength = 11

var rucWeights = [RUCLength - 1]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateRUC checks length, characters and the modulo 11 check digit.
func ValidateRUC(ruc string) error {
	ruc = strings.TrimSpace(ruc)
	if len(ruc) != RUCLength {
		return ErrInvalidRUCLength
	}

	sum := 0
	for i := 0; i < RUCLength; i++ {
		c := ruc[i]
		if c < '0' || c > '9' {
			return ErrInvalidRUCCharacters
		}
		if i < len(rucWeights) {
			sum += int(c-'0') * rucWeights[i]
		}
	}

	if int(ruc[RUCLength-1]-'0') != checkDigit(sum) {
		return ErrInvalidRUCCheckDigit
	}
	return nil
}

func checkDigit(sum int) int {
	residue := sum % 11
	if residue < 2 {
		return residue
	}
	return 11 - residue
}

// Describe returns a short message for a validation result.
func Describe(err error) string {
	switch {
	case err == nil:
		return "RUC válido"
	case errors.Is(err, ErrInvalidRUCLength):
		return "RUC debe tener 11 dígitos"
	case errors.Is(err, ErrInvalidRUCCharacters):
		return "RUC debe contener solo números"
	case errors.Is(err, ErrInvalidRUCCheckDigit):
		return "Dígito verificador del RUC es incorrecto"
	default:
		return "Error en validación del RUC"
	}
}
