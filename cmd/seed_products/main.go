// seed_products genera un script SQL para cargar el catálogo de productos de stock-api
// a partir de un CSV separado por ';' con columnas: codigo;descripcion;saldo.
//
// Uso: go run ./cmd/seed_products [-latin1] [-o salida.sql] productos.csv
// Sin -o escribe en stdout. Con -latin1 el archivo se lee como ISO-8859-1 (exportaciones de Excel);
// sin la opción se detecta: si el contenido no es UTF-8 válido también se decodifica como ISO-8859-1.
package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type product struct {
	code, description string
	balance           int
}

func main() {
	latin1 := flag.Bool("latin1", false, "leer el CSV como ISO-8859-1")
	outPath := flag.String("o", "", "archivo de salida (por defecto stdout)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_products [-latin1] [-o salida.sql] productos.csv")
		os.Exit(2)
	}

	raw, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	n, err := generate(bytes.NewReader(raw), w, *latin1 || !utf8.Valid(raw))
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generados %d productos\n", n)
}

// generate lee el CSV y escribe un INSERT por producto. Devuelve cuántos productos escribió.
func generate(r io.Reader, w io.Writer, latin1 bool) (int, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	products, err := parse(r)
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(w, "-- Catálogo de productos (generado por seed_products)")
	fmt.Fprintln(w, "BEGIN;")
	for _, p := range products {
		fmt.Fprintf(w, "INSERT INTO products (id, code, description, balance) VALUES ('%s', '%s', '%s', %d)\n",
			uuid.New().String(), escapeSQL(p.code), escapeSQL(p.description), p.balance)
		fmt.Fprintln(w, "ON CONFLICT (code) DO UPDATE SET description = EXCLUDED.description, updated_at = now();")
	}
	_, err = fmt.Fprintln(w, "COMMIT;")
	return len(products), err
}

func parse(r io.Reader) ([]product, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []product
	seen := make(map[string]bool)
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) < 2 {
			return nil, fmt.Errorf("línea %d: se esperan al menos codigo;descripcion", line)
		}
		code := strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff"))
		desc := strings.TrimSpace(rec[1])
		// Cabecera opcional
		if line == 1 && strings.EqualFold(code, "codigo") {
			continue
		}
		if code == "" || desc == "" {
			return nil, fmt.Errorf("línea %d: codigo y descripcion son requeridos", line)
		}
		balance := 0
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			balance, err = strconv.Atoi(strings.TrimSpace(rec[2]))
			if err != nil || balance < 0 {
				return nil, fmt.Errorf("línea %d: saldo inválido %q", line, rec[2])
			}
		}
		if seen[code] {
			return nil, fmt.Errorf("línea %d: código duplicado %q", line, code)
		}
		seen[code] = true
		out = append(out, product{code: code, description: desc, balance: balance})
	}
	return out, nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
