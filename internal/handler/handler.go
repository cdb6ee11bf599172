package handler

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/gym-membership/pkg/response"
	"github.com/segyhp/gym-membership/pkg/utils"
)

// newValidator teaches validator to compare decimal amounts numerically.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decode reads a JSON body into dst and validates it, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON payload", err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

// queryBool returns nil when key is absent or not a boolean
func queryBool(r *http.Request, key string) *bool {
	b, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &b
}

// queryDate returns nil when key is absent
func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := utils.ParseDate(raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
