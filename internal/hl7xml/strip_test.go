package hl7xml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"basic", "<X><X.1>a</X.1><X.2>b</X.2></X>", "a|b"},
		{"empty", "", ""},
		{"single child", "<OBX.5><OBX.5.1>29</OBX.5.1></OBX.5>", "29"},
		{"entities", "<X><X.1>a &gt; b</X.1></X>", "a > b"},
		{"no children", "<X></X>", "<X></X>"},
		{"empty child dropped", "<X><X.1></X.1><X.2>b</X.2></X>", "b"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Strip(c.in))
		})
	}
}
