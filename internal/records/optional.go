package records

import (
	"encoding/json"
	"fmt"
	"strings"
)

// optional is a numeric request field that may be absent. JSON null and a
// blank form value both leave it unset, so JSON and form bodies agree on
// what "no value" means.
type optional[T int | float64] struct {
	v *T
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	if strings.TrimSpace(string(b)) == "null" {
		o.v = nil
		return nil
	}
	var n T
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	o.v = &n
	return nil
}

// UnmarshalParam is used by gin's form binding.
func (o *optional[T]) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		o.v = nil
		return nil
	}
	var n T
	if err := json.Unmarshal([]byte(s), &n); err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	o.v = &n
	return nil
}

func (o optional[T]) ptr() *T { return o.v }
