package leaguedomain

// Quota is how many competitors move up and down in one pod.
type Quota struct {
	Promote  int
	Relegate int
}

// PodQuota computes the promotion/relegation quota for a pod of the given
// size.
//
// Pods at full strength (>=10) use a fixed top-3 / bottom-3 split. Tiny pods
// (<=3) are a hard special case: exactly one promotes, one relegates when at
// least two competitors exist. Everything in between uses 15% of the pod per
// direction, floored, minimum one each, with combined churn capped at size-1
// so at least one competitor always stays.
func PodQuota(size int) Quota {
	if size <= 0 {
		return Quota{}
	}

	if size >= 10 {
		return Quota{Promote: 3, Relegate: 3}
	}

	if size <= 3 {
		q := Quota{Promote: 1}
		if size >= 2 {
			q.Relegate = 1
		}
		return q
	}

	promote := size * 15 / 100
	if promote < 1 {
		promote = 1
	}
	relegate := promote

	// Reduce roughly evenly when the raw counts would churn the whole pod,
	// never dropping either side below 1.
	for promote+relegate > size-1 {
		if promote > relegate && promote > 1 {
			promote--
		} else if relegate > 1 {
			relegate--
		} else if promote > 1 {
			promote--
		} else {
			break
		}
	}

	return Quota{Promote: promote, Relegate: relegate}
}

// ClassifyPosition decides a competitor's outcome from its final position.
//
// A competitor already at the top league stays instead of promoting; one at
// the bottom league stays instead of relegating.
func ClassifyPosition(position, size int, league League, q Quota) Outcome {
	if position <= q.Promote {
		if league >= MaxLeague {
			return OutcomeStayed
		}
		return OutcomePromoted
	}
	if position > size-q.Relegate {
		if league <= MinLeague {
			return OutcomeStayed
		}
		return OutcomeRelegated
	}
	return OutcomeStayed
}

// NextLeague applies an outcome to a competitor's current league.
func NextLeague(current League, outcome Outcome) League {
	switch outcome {
	case OutcomePromoted:
		return current.Promoted()
	case OutcomeRelegated:
		return current.Relegated()
	default:
		return current
	}
}
