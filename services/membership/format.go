package membership

import (
	game_constants "PlayFinder/constants/game"
	"fmt"
)

func FormatClass(class int) string {
	return fmt.Sprintf("%dª classe", class)
}

// FormatClassRange renders "3ª a 5ª classe", or a single class when both ends match
func FormatClassRange(min, max int) string {
	if min == max {
		return FormatClass(min)
	}
	return fmt.Sprintf("%dª a %dª classe", min, max)
}

func FormatGameType(gameType string) string {
	switch gameType {
	case game_constants.GAME_TYPE_SINGLES:
		return "Simples"
	case game_constants.GAME_TYPE_DOUBLES:
		return "Duplas"
	}
	return gameType
}
