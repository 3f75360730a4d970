// Package words renders monetary amounts as upper-case Spanish sentences for
// legal printing on proforma documents.
package words

import (
	"math"
	"strconv"
	"strings"
)

var unidades = [10]string{"", "UN", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE"}

var decenas = [10]string{"", "DIEZ", "VEINTE", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA"}

var dieces = [10]string{"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISEIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE"}

var centenas = [10]string{"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS"}

// convertGroup renders a number in [0, 999]. Exactly 100 is "CIEN"; the
// conjunction "Y" joins tens and units only, never hundreds and remainder.
func convertGroup(n int) string {
	if n == 100 {
		return "CIEN"
	}

	out := ""
	if n >= 100 {
		out += centenas[n/100]
		n %= 100
		if n > 0 {
			out += " "
		}
	}

	switch {
	case n >= 10 && n <= 19:
		return out + dieces[n-10]
	case n >= 20:
		out += decenas[n/10]
		n %= 10
		if n > 0 {
			out += " Y "
		}
	}

	if n > 0 {
		out += unidades[n]
	}
	return out
}

// underMillion renders a number in [0, 999999]. A zero thousands group is
// omitted entirely.
func underMillion(n int) string {
	out := ""
	if n >= 1000 {
		thousands := n / 1000
		if thousands == 1 {
			out += "MIL "
		} else {
			out += convertGroup(thousands) + " MIL "
		}
		n %= 1000
	}

	if n > 0 {
		out += convertGroup(n)
	}
	return out
}

// integerWords renders a non-negative integer. The millones count is itself
// rendered with the thousands rules, so amounts in the thousands of millions
// come out as "MIL MILLONES", "DOS MIL QUINIENTOS MILLONES" and so on.
func integerWords(n int) string {
	if n == 0 {
		return "CERO"
	}

	out := ""
	if n >= 1000000 {
		millions := n / 1000000
		if millions == 1 {
			out += "UN MILLÓN "
		} else {
			out += strings.TrimSpace(underMillion(millions)) + " MILLONES "
		}
		n %= 1000000
	}

	out += underMillion(n)
	return out
}

// AmountInWords converts a non-negative dollar amount into its Spanish words
// rendition, e.g. 123.45 becomes
// "CIENTO VEINTE Y TRES DÓLARES AMERICANOS CON 45/100 CENTAVOS".
// NaN or negative input is treated as zero.
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || amount < 0 {
		amount = 0
	}

	integerPart := int(math.Floor(amount))
	cents := int(math.Round((amount - math.Floor(amount)) * 100))
	if cents == 100 {
		// Rounding can carry over into the next dollar (e.g. 9.999)
		integerPart++
		cents = 0
	}

	return strings.TrimSpace(integerWords(integerPart)) +
		" DÓLARES AMERICANOS CON " + strconv.Itoa(cents) + "/100 CENTAVOS"
}
