package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString accepts a JSON string or number and keeps its textual form.
// The upstream API is inconsistent about ids and prices.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(strings.TrimSpace(string(b)))
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Review is a customer review shown on provider listings.
type Review struct {
	Author  string  `bson:"author" json:"author"`
	Rating  float64 `bson:"rating" json:"rating"`
	Comment string  `bson:"comment" json:"comment"`
	Date    string  `bson:"date,omitempty" json:"date,omitempty"`
}
