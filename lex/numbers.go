package lex

import "strconv"

func parseInt(raw []byte) (int64, error) {
	return strconv.ParseInt(string(raw), 10, 64)
}

func parseFloat(raw []byte) (float64, error) {
	s := string(raw)
	if s == "." || s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
