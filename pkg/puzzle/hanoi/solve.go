package hanoi

import "github.com/aretw0/towerbench/pkg/domain"

// Solve returns the standard recursive solution moving n disks from peg 0 to peg 2.
func Solve(n int) domain.MoveBatch {
	if n < 1 {
		return domain.MoveBatch{}
	}
	moves := make(domain.MoveBatch, 0, 1<<n-1)
	var step func(k, from, to, via int)
	step = func(k, from, to, via int) {
		if k == 0 {
			return
		}
		step(k-1, from, via, to)
		moves = append(moves, domain.Move{Disk: k, From: from, To: to})
		step(k-1, via, to, from)
	}
	step(n, 0, TargetPeg, 1)
	return moves
}
