package game

// chooseAutoMove picks the card for an unattended seat. Leading plays the
// cheapest card, following plays the lowest card of the led suit, and a void
// seat dumps its most expensive card.
func chooseAutoMove(hand []Card, trick []Card) Card {
	if len(hand) == 0 {
		panic("game: auto move with an empty hand")
	}
	if len(trick) == 0 {
		return minBy(hand, lessCheap)
	}

	led := trick[0].Suit()
	if hasSuit(hand, led) {
		var follow []Card
		for _, c := range hand {
			if c.Suit() == led {
				follow = append(follow, c)
			}
		}
		return minBy(follow, lessCheap)
	}
	return minBy(hand, func(a, b Card) bool { return lessCheap(b, a) })
}

// passFallback picks the card forced into an incomplete pass.
func passFallback(hand []Card) Card {
	return minBy(hand, func(a, b Card) bool { return lessCheap(b, a) })
}

// lessCheap orders by points, then rank, then display suit order.
func lessCheap(a, b Card) bool {
	if a.Points() != b.Points() {
		return a.Points() < b.Points()
	}
	if a.Rank() != b.Rank() {
		return a.Rank() < b.Rank()
	}
	return sortOrder[a.Suit()] < sortOrder[b.Suit()]
}

func minBy(cards []Card, less func(a, b Card) bool) Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if less(c, best) {
			best = c
		}
	}
	return best
}

func hasNonPointCard(hand []Card) bool {
	for _, c := range hand {
		if c.Points() == 0 {
			return true
		}
	}
	return false
}
