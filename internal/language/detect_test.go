package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Lang
	}{
		{"plain english", "I want a haircut tomorrow", English},
		{"plain arabic", "أريد حلاقة شعر غدا", Arabic},
		{"mixed scripts lean arabic", "booking غدا please", Arabic},
		{"empty defaults english", "", English},
		{"digits and punctuation", "3:00 pm!!", English},
		{"presentation forms", "ﻻ", Arabic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestTextIn(t *testing.T) {
	msg := Text{AR: "مرحبا", EN: "Hello"}
	assert.Equal(t, "مرحبا", msg.In(Arabic))
	assert.Equal(t, "Hello", msg.In(English))

	missingAR := Text{EN: "Hello"}
	assert.Equal(t, "Hello", missingAR.In(Arabic), "empty Arabic rendering falls back to English")
}
