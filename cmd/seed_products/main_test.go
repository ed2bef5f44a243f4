package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestGenerate_UTF8ConCabecera(t *testing.T) {
	in := "codigo;descripcion;saldo\nA-1;Tornillo 1/4;10\nB-2;Tuerca d'acero;\n"
	var out bytes.Buffer
	n, err := generate(strings.NewReader(in), &out, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sql := out.String()
	assert.Contains(t, sql, "'A-1', 'Tornillo 1/4', 10)")
	assert.Contains(t, sql, "'B-2', 'Tuerca d''acero', 0)")
	assert.Equal(t, 2, strings.Count(sql, "ON CONFLICT (code)"))
	assert.True(t, strings.HasSuffix(sql, "COMMIT;\n"))
}

func TestGenerate_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("C-3;Cañería;5\n")
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = generate(strings.NewReader(encoded), &out, true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "'Cañería'")
}

func TestGenerate_Errores(t *testing.T) {
	cases := map[string]string{
		"saldo negativo":    "A;Tornillo;-1\n",
		"saldo no numérico": "A;Tornillo;diez\n",
		"sin descripción":   "A;\n",
		"código duplicado":  "A;Uno;1\nA;Dos;2\n",
		"una columna":       "A\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := generate(strings.NewReader(in), &bytes.Buffer{}, false)
			assert.Error(t, err)
		})
	}
}
