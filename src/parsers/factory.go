package parsers

import (
	"fmt"

	"github.com/username/tradecoach/backend/src/parsers/nordnet"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "nordnet":
		return nordnet.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
