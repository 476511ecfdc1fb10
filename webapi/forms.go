// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/mitchellh/mapstructure"
)

// extraDataPrefix marks submitted fields that belong in an object's
// extra_data.
const extraDataPrefix = "extra_data."

var errRequired = errors.New("This field is required.")

// FieldErrorer is anything that reports validation errors by field.
type FieldErrorer interface {
	// FieldErrors returns the errors for each invalid field, in
	// the order they were found.
	FieldErrors() map[string][]error
}

// FormErrors converts the field errors of a form to their messages.
// Every invalid field is included.
func FormErrors(form FieldErrorer) map[string][]string {
	fields := make(map[string][]string)
	for field, errs := range form.FieldErrors() {
		messages := make([]string, len(errs))
		for i, err := range errs {
			messages[i] = err.Error()
		}
		fields[field] = messages
	}
	return fields
}

// Form holds submitted fields and the errors found decoding them.
type Form struct {
	Fields map[string]string
	errors map[string][]error
}

// NewForm creates a form from submitted fields.
func NewForm(fields map[string]string) *Form {
	return &Form{Fields: fields, errors: make(map[string][]error)}
}

// AddError records a validation error for a field.
func (f *Form) AddError(field string, err error) {
	f.errors[field] = append(f.errors[field], err)
}

// FieldErrors returns the recorded errors.
func (f *Form) FieldErrors() map[string][]error {
	return f.errors
}

// Err returns nil if the form has no errors, or an error carrying
// every field's messages.
func (f *Form) Err() error {
	if len(f.errors) == 0 {
		return nil
	}
	return apidata.ErrInvalidForm{Fields: FormErrors(f)}
}

// Require records an error for each of names that was not
// submitted or is empty.
func (f *Form) Require(names ...string) {
	for _, name := range names {
		if f.Fields[name] == "" {
			f.AddError(name, errRequired)
		}
	}
}

// Decode copies submitted fields into out, a pointer to a struct
// whose fields carry mapstructure tags.  String values are converted
// to the field types; a field that cannot be converted records an
// error.  Fields out does not mention, including extra_data fields,
// are ignored.
func (f *Form) Decode(out interface{}) {
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		if !strings.HasPrefix(name, extraDataPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	// Decode one field at a time so each failure is charged to
	// its own field
	for _, name := range names {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           out,
		})
		if err != nil {
			panic(err)
		}
		err = decoder.Decode(map[string]interface{}{name: f.Fields[name]})
		if err != nil {
			f.AddError(name, fmt.Errorf("%q is not a valid value.", f.Fields[name]))
		}
	}
}

// ImportExtraData copies the submitted extra_data.<key> fields into
// extraData.  A non-empty value sets extraData[key]; an empty value
// deletes key.  Other fields are ignored.  extraData is changed in
// place, and must not be nil if any value is non-empty.
func ImportExtraData(extraData map[string]interface{}, fields map[string]string) {
	for name, value := range fields {
		if !strings.HasPrefix(name, extraDataPrefix) {
			continue
		}
		key := strings.TrimPrefix(name, extraDataPrefix)
		if value != "" {
			extraData[key] = value
		} else {
			delete(extraData, key)
		}
	}
}
