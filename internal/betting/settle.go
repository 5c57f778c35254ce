package betting

// Result is the settlement of a single bet.
type Result string

const (
	ResultWin  Result = "win"
	ResultLose Result = "lose"
	ResultPush Result = "push"
)

// SettleHandicap settles a bet on team A with the given line applied to its
// score (maps or kills). Whole lines can push.
func SettleHandicap(scoreA, scoreB int, line float64) Result {
	return compare(float64(scoreA)+line, float64(scoreB))
}

// SettleTotal settles an over or under bet against the actual total.
func SettleTotal(actual, line float64, over bool) Result {
	if over {
		return compare(actual, line)
	}
	return compare(line, actual)
}

func compare(a, b float64) Result {
	switch {
	case a > b:
		return ResultWin
	case a < b:
		return ResultLose
	default:
		return ResultPush
	}
}

// Payout returns the amount returned for a stake at decimal odds, stake included.
func Payout(r Result, stake, odds float64) float64 {
	switch r {
	case ResultWin:
		return stake * odds
	case ResultPush:
		return stake
	default:
		return 0
	}
}
