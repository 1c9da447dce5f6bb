package provider

import (
	"regexp"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// employees formats a head count the way records display company size.
func employees(n *float64) string {
	if n == nil || *n <= 0 {
		return ""
	}
	return message.NewPrinter(language.English).Sprintf("%d employees", int64(*n))
}

var yearRe = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)

// year extracts the first plausible four-digit year from s.
func year(s string) *int {
	m := yearRe.FindString(s)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func nonZero(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
