package notifier

import (
	"fmt"
	"strings"
)

// Forecaster is the predictor surface reachable from chat commands.
type Forecaster interface {
	Predict(symbol, algorithm string) ([]float64, error)
	ListAlgorithms() []string
}

const predictionTail = 5

// NewCommandHandler routes chat commands to f:
//
//	/predict SYMBOL [ALGORITHM]   run a forecast (default SMA)
//	/algorithms                   list registered algorithms
//	/help                         usage
func NewCommandHandler(f Forecaster) CommandHandler {
	return func(command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return ""
		}
		// "/predict@MyBot" addresses the bot in group chats
		name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

		switch name {
		case "/predict":
			if len(fields) < 2 {
				return "Usage: /predict SYMBOL [ALGORITHM]"
			}
			symbol := strings.ToUpper(fields[1])
			if !validSymbol(symbol) {
				return "❌ invalid symbol"
			}
			alg := "SMA"
			if len(fields) > 2 {
				alg = strings.ToUpper(fields[2])
			}
			values, err := f.Predict(symbol, alg)
			if err != nil {
				return fmt.Sprintf("❌ %s %s: %s", escape(symbol), escape(alg), escape(err.Error()))
			}
			return FormatPrediction(symbol, alg, values, predictionTail)
		case "/algorithms":
			return "Algorithms: " + strings.Join(f.ListAlgorithms(), ", ")
		case "/help", "/start":
			return "/predict SYMBOL [ALGORITHM]\n/algorithms"
		default:
			return ""
		}
	}
}

func validSymbol(s string) bool {
	if len(s) > 64 || strings.Contains(s, "..") {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
