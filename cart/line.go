package cart

// Product is a catalog entry and the candidate passed to AddToCart.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// Line is one product in the cart. Quantity is at least 1 while the line
// is held by a Store.
type Line struct {
	Product
	Quantity int `json:"quantity"`
}

type Totals struct {
	Items  int     `json:"items"`
	Amount float64 `json:"amount"`
}

func indexOf(lines []Line, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}

	return -1
}

// add returns lines with p appended at quantity 1, or incremented when a
// line for p.ID is already present.
func add(lines []Line, p Product) []Line {
	if indexOf(lines, p.ID) >= 0 {
		return increment(lines, p.ID)
	}

	next := make([]Line, len(lines), len(lines)+1)
	copy(next, lines)

	return append(next, Line{Product: p, Quantity: 1})
}

func increment(lines []Line, id string) []Line {
	next := make([]Line, len(lines))
	for i, l := range lines {
		if l.ID == id {
			l.Quantity++
		}
		next[i] = l
	}

	return next
}

// decrement lowers the matching line by one, never below zero, and drops
// every line left at zero.
func decrement(lines []Line, id string) []Line {
	next := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID == id && l.Quantity > 0 {
			l.Quantity--
		}
		if l.Quantity == 0 {
			continue
		}
		next = append(next, l)
	}

	return next
}

func Sum(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Items += l.Quantity
		t.Amount += l.Price * float64(l.Quantity)
	}

	return t
}

func clone(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
