package domain

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// ParseBooleanQueryParam parses a boolean query parameter, defaulting to
// false when the parameter is absent.
func ParseBooleanQueryParam(c echo.Context, paramName string) (bool, error) {
	paramValueStr := c.QueryParam(paramName)
	if paramValueStr == "" {
		return false, nil
	}
	return strconv.ParseBool(paramValueStr)
}

// ParseTokenId parses a token ID query or path parameter.
func ParseTokenId(s string) (TokenId, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenId(v), nil
}
