package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"trailhaven/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrMalformedRow is returned when an embedded relation does not match its
// response contract
var ErrMalformedRow = errors.New("malformed row")

const uniqueViolation = "23505"

var (
	contract  = validator.New()
	ratingTag = fmt.Sprintf("gte=%d,lte=%d", domain.MinRating, domain.MaxRating)
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// decodeObject decodes an embedded JSON object. A NULL relation yields nil.
func decodeObject[T any](raw []byte, relation string) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, relation, err)
	}
	if err := contract.Struct(out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, relation, err)
	}

	return out, nil
}

// decodeList decodes an embedded JSON array of objects, validating each one
func decodeList[T any](raw []byte, relation string) ([]T, error) {
	out := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, relation, err)
	}
	for i := range out {
		if err := contract.Struct(&out[i]); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedRow, relation, i, err)
		}
	}

	return out, nil
}

// decodeRatings decodes an embedded array of review ratings
func decodeRatings(raw []byte) ([]int, error) {
	ratings := []int{}
	if len(raw) == 0 || string(raw) == "null" {
		return ratings, nil
	}

	if err := json.Unmarshal(raw, &ratings); err != nil {
		return nil, fmt.Errorf("%w: ratings: %v", ErrMalformedRow, err)
	}
	for i, rating := range ratings {
		if err := contract.Var(rating, ratingTag); err != nil {
			return nil, fmt.Errorf("%w: ratings[%d]=%d out of range", ErrMalformedRow, i, rating)
		}
	}

	return ratings, nil
}

// decodeIDs decodes an embedded array of identifiers
func decodeIDs(raw []byte, relation string) ([]string, error) {
	ids := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return ids, nil
	}

	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRow, relation, err)
	}

	return ids, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}
