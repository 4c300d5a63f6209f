// Package post defines the Post shape and the pure validation that turns an
// inbound JSON payload into a normalized Post.
package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DefaultAuthor is used when a payload carries no author.
const DefaultAuthor = "Anonymous"

// Post is an immutable timestamped message belonging to one channel.
type Post struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
}

// Encode returns the canonical JSON form used for storage and broadcast.
func (p Post) Encode() []byte {
	b, _ := json.Marshal(p)
	return b
}

// Decode parses a stored record produced by Encode.
func Decode(b []byte) (Post, error) {
	var p Post
	if err := json.Unmarshal(b, &p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// ValidationError reports a payload that does not satisfy the post shape.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var idPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// payload mirrors the wire shape. Pointers distinguish absent from zero.
type payload struct {
	ID        *string          `json:"id"`
	Author    *string          `json:"author"`
	Content   *string          `json:"content"`
	CreatedAt *json.RawMessage `json:"createdAt"`
}

// shape is what the validator checks; field order is the report order.
type shape struct {
	ID        string `validate:"required,postid"`
	Content   string `validate:"required"`
	CreatedAt *int64 `validate:"required"`
}

var reasons = map[string]string{
	"ID":        "malformed id",
	"Content":   "missing content",
	"CreatedAt": "missing createdAt",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("postid", func(fl validator.FieldLevel) bool {
			return idPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate decodes raw and returns the normalized Post. Unknown fields are
// dropped; a missing or empty author becomes DefaultAuthor.
func Validate(raw []byte) (Post, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Post{}, &ValidationError{Reason: "invalid post"}
	}
	var in payload
	if err := json.Unmarshal(raw, &in); err != nil {
		return Post{}, &ValidationError{Reason: "invalid post"}
	}

	s := shape{ID: deref(in.ID), Content: deref(in.Content)}
	var malformedTS bool
	if in.CreatedAt != nil {
		ts, ok := integral(*in.CreatedAt)
		if ok {
			s.CreatedAt = &ts
		} else {
			malformedTS = true
		}
	}

	if err := validatorInstance().Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			reason := reasons[fieldErrs[0].StructField()]
			if fieldErrs[0].StructField() == "CreatedAt" && malformedTS {
				reason = "malformed createdAt"
			}
			return Post{}, &ValidationError{Reason: reason}
		}
		return Post{}, &ValidationError{Reason: "invalid post"}
	}

	author := deref(in.Author)
	if author == "" {
		author = DefaultAuthor
	}
	return Post{ID: s.ID, Author: author, Content: s.Content, CreatedAt: *s.CreatedAt}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// integral accepts JSON numbers whose exact decimal value is a whole number
// in int64 range, so 1.7e12 and 5.0 pass. Quoted numbers are rejected rather
// than coerced. Works on the decimal text, with no float64 rounding.
func integral(raw json.RawMessage) (int64, bool) {
	s := string(raw)
	if s == "" || !(s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	neg := s[0] == '-'
	if neg {
		s = s[1:]
	}
	mant, exp := s, "0"
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, exp = s[:i], s[i+1:]
	}
	whole, frac, _ := strings.Cut(mant, ".")
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return 0, true
	}
	sig := strings.TrimRight(digits, "0")
	shift := len(digits) - len(sig) - len(frac)

	e, err := strconv.Atoi(strings.TrimPrefix(exp, "+"))
	if err != nil || e > len(s)+19 || e < -len(s) {
		return 0, false
	}
	shift += e
	// sig has no trailing zeros: a negative shift leaves a fraction.
	if shift < 0 || len(sig)+shift > 19 {
		return 0, false
	}
	n := sig + strings.Repeat("0", shift)
	if neg {
		n = "-" + n
	}
	v, err := strconv.ParseInt(n, 10, 64)
	return v, err == nil
}
