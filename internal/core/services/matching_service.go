package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/data-steve/rowcol-sub000/internal/core/domain"
	portsrepo "github.com/data-steve/rowcol-sub000/internal/core/ports/repositories"
	portssvc "github.com/data-steve/rowcol-sub000/internal/core/ports/services"
	"github.com/data-steve/rowcol-sub000/pkg/config"
)

const (
	// maxSolutions bounds how many viable subsets a single deposit may produce.
	// Anything past this is noise: the orchestrator only needs the ranked head.
	maxSolutions = 50

	// maxDPSum bounds the width of the achievable-sum table. Deposits larger than
	// this fall back to depth-first enumeration with pruning.
	maxDPSum = 1 << 22
)

// matcherService searches an invoice candidate pool for the subsets whose net
// value explains a deposit within tolerance. Pure given its inputs except for the
// read-only correction lookup, so it is safe on concurrent workers.
type matcherService struct {
	correctionRepo portsrepo.CorrectionReader
	cfg            config.ReconConfig
}

// NewMatcherService creates a new matching engine.
func NewMatcherService(correctionRepo portsrepo.CorrectionReader, cfg config.ReconConfig) portssvc.MatcherSvcFacade {
	return &matcherService{correctionRepo: correctionRepo, cfg: cfg}
}

var _ portssvc.MatcherSvcFacade = (*matcherService)(nil)

// candidate is a scored subset before conversion to a domain.Match.
type candidate struct {
	invoices   []domain.Invoice
	sum        int64
	residual   int64
	confidence float64
}

// FindMatches returns candidate matches for the deposit ordered best first.
func (s *matcherService) FindMatches(ctx context.Context, deposit domain.Event, pool []domain.Invoice) ([]domain.Match, error) {
	if deposit.Amount <= 0 {
		return nil, nil
	}

	candidates := make([]domain.Invoice, 0, len(pool))
	for _, inv := range pool {
		if inv.Status == domain.InvoiceOpen && inv.AmountDue > 0 {
			candidates = append(candidates, inv)
		}
		if len(candidates) == s.cfg.MaxCandidatePool {
			break
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	target := deposit.Amount
	tolerance := s.cfg.Tolerance(target)

	amounts := make([]int64, len(candidates))
	for i, inv := range candidates {
		amounts[i] = inv.AmountDue
	}
	subsets := enumerateSubsets(amounts, target, tolerance, s.cfg.MaxSubsetSize)
	if len(subsets) == 0 {
		return nil, nil
	}

	sizeCounts, err := s.correctionSizeCounts(ctx, deposit.TenantID, deposit.PayerRef)
	if err != nil {
		return nil, err
	}

	scored := make([]candidate, 0, len(subsets))
	for _, subset := range subsets {
		c := candidate{}
		for _, idx := range subset {
			c.invoices = append(c.invoices, candidates[idx])
			c.sum += candidates[idx].AmountDue
		}
		c.residual = target - c.sum
		c.confidence = s.score(deposit, c, tolerance, sizeCounts)
		scored = append(scored, c)
	}

	sortCandidates(scored)

	now := time.Now().UTC()
	matches := make([]domain.Match, len(scored))
	for i, c := range scored {
		ids := make([]string, len(c.invoices))
		for j, inv := range c.invoices {
			ids[j] = inv.InvoiceID
		}
		sort.Strings(ids)
		matches[i] = domain.Match{
			MatchID:        uuid.NewString(),
			TenantID:       deposit.TenantID,
			DepositEventID: deposit.EventID,
			InvoiceIDs:     ids,
			Residual:       c.residual,
			Confidence:     c.confidence,
			CreatedAt:      now,
		}
	}
	return matches, nil
}

// score applies the confidence formula:
//
//	clamp(1 − w1·(residual/tolerance) − w2·(avg_date_gap/window)
//	        − w3·(size−1)/max_subset_size + w4·correction_bonus, 0, 1)
//
// A single exact candidate bypasses the formula entirely and scores 1.0.
func (s *matcherService) score(deposit domain.Event, c candidate, tolerance int64, sizeCounts map[int]int) float64 {
	if len(c.invoices) == 1 && c.residual == 0 {
		return 1.0
	}

	residual := c.residual
	if residual < 0 {
		residual = -residual
	}
	residualRatio := 0.0
	if tolerance > 0 {
		residualRatio = float64(residual) / float64(tolerance)
	}

	var gapDays float64
	for _, inv := range c.invoices {
		gap := deposit.OccurredAt.Sub(inv.IssuedAt).Hours() / 24
		if gap < 0 {
			gap = -gap
		}
		gapDays += gap
	}
	gapDays /= float64(len(c.invoices))
	gapRatio := gapDays / float64(s.cfg.WindowDays)

	sizeRatio := float64(len(c.invoices)-1) / float64(s.cfg.MaxSubsetSize)

	bonus := s.cfg.CorrectionBonusPerHit * float64(sizeCounts[len(c.invoices)])
	if bonus > s.cfg.CorrectionBonusCap {
		bonus = s.cfg.CorrectionBonusCap
	}

	w := s.cfg.Weights
	confidence := 1.0 - w.Residual*residualRatio - w.DateGap*gapRatio - w.SubsetSize*sizeRatio + w.CorrectionBonus*bonus
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// correctionSizeCounts aggregates past human corrections for the payer by chosen
// subset size. This is the whole "learned" model: an explicit, auditable count
// table, not a statistical fit.
func (s *matcherService) correctionSizeCounts(ctx context.Context, tenantID, payerRef string) (map[int]int, error) {
	if payerRef == "" {
		return nil, nil
	}
	corrections, err := s.correctionRepo.ListCorrectionsByPayer(ctx, tenantID, payerRef)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections for payer %s: %w", payerRef, err)
	}
	counts := make(map[int]int, len(corrections))
	for _, c := range corrections {
		if c.SubsetSize > 0 {
			counts[c.SubsetSize]++
		}
	}
	return counts, nil
}

// sortCandidates orders candidates best first with deterministic tie-breaking:
// confidence, then smallest subset, smallest absolute residual, most recently
// issued invoices, and finally the lexicographically smallest invoice-id set.
func sortCandidates(cs []candidate) {
	key := func(c candidate) (int64, time.Time, string) {
		residual := c.residual
		if residual < 0 {
			residual = -residual
		}
		latest := time.Time{}
		ids := make([]string, len(c.invoices))
		for i, inv := range c.invoices {
			if inv.IssuedAt.After(latest) {
				latest = inv.IssuedAt
			}
			ids[i] = inv.InvoiceID
		}
		sort.Strings(ids)
		return residual, latest, strings.Join(ids, ",")
	}

	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].confidence != cs[j].confidence {
			return cs[i].confidence > cs[j].confidence
		}
		if len(cs[i].invoices) != len(cs[j].invoices) {
			return len(cs[i].invoices) < len(cs[j].invoices)
		}
		ri, ti, ki := key(cs[i])
		rj, tj, kj := key(cs[j])
		if ri != rj {
			return ri < rj
		}
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ki < kj
	})
}

// enumerateSubsets finds every subset of amounts whose sum lands within
// [target−tolerance, target+tolerance], capped at maxSize elements and
// maxSolutions results. The search runs a dynamic program over the achievable-sum
// space and backtracks through the table to materialize subsets; oversized targets
// fall back to depth-first enumeration with prefix-sum pruning.
func enumerateSubsets(amounts []int64, target, tolerance int64, maxSize int) [][]int {
	hi := target + tolerance
	lo := target - tolerance
	if lo < 1 {
		lo = 1
	}
	if hi > maxDPSum {
		return enumerateSubsetsDFS(amounts, lo, hi, target, maxSize)
	}

	n := len(amounts)
	words := int(hi/64) + 1

	// reachable[i] holds the sums achievable using the first i amounts.
	reachable := make([][]uint64, n+1)
	reachable[0] = make([]uint64, words)
	reachable[0][0] = 1 // empty subset reaches 0
	for i := 1; i <= n; i++ {
		reachable[i] = shiftOr(reachable[i-1], amounts[i-1], hi)
	}

	has := func(i int, sum int64) bool {
		return reachable[i][sum/64]&(1<<(uint(sum)%64)) != 0
	}

	var results [][]int
	var chosen []int
	var backtrack func(i int, sum int64)
	backtrack = func(i int, sum int64) {
		if len(results) >= maxSolutions {
			return
		}
		if sum == 0 {
			subset := make([]int, len(chosen))
			copy(subset, chosen)
			results = append(results, subset)
			return
		}
		if i == 0 {
			return
		}
		if has(i-1, sum) {
			backtrack(i-1, sum)
		}
		if len(chosen) < maxSize && amounts[i-1] <= sum && has(i-1, sum-amounts[i-1]) {
			chosen = append(chosen, i-1)
			backtrack(i-1, sum-amounts[i-1])
			chosen = chosen[:len(chosen)-1]
		}
	}

	// Walk sums outward from the target so the solution cap keeps the
	// smallest-residual subsets. Scanning lo..hi instead would let a crowd of
	// low-sum subsets evict an exact match.
	for offset := int64(0); len(results) < maxSolutions; offset++ {
		up := target + offset
		down := target - offset
		if up > hi && down < lo {
			break
		}
		if up <= hi && has(n, up) {
			backtrack(n, up)
		}
		if offset > 0 && down >= lo && len(results) < maxSolutions && has(n, down) {
			backtrack(n, down)
		}
	}
	return results
}

// shiftOr returns prev | (prev << amount), truncated to sums ≤ hi.
func shiftOr(prev []uint64, amount int64, hi int64) []uint64 {
	words := len(prev)
	next := make([]uint64, words)
	copy(next, prev)
	if amount > hi {
		return next
	}
	wordShift := int(amount / 64)
	bitShift := uint(amount % 64)
	for w := words - 1; w >= wordShift; w-- {
		v := prev[w-wordShift] << bitShift
		if bitShift != 0 && w-wordShift-1 >= 0 {
			v |= prev[w-wordShift-1] >> (64 - bitShift)
		}
		next[w] |= v
	}
	// Mask out sums beyond hi so has() never reads past the target window.
	topWord := int(hi / 64)
	topBit := uint(hi % 64)
	if topBit != 63 {
		next[topWord] &= (1 << (topBit + 1)) - 1
	}
	for w := topWord + 1; w < words; w++ {
		next[w] = 0
	}
	return next
}

// enumerateSubsetsDFS is the fallback for deposits whose amount exceeds the DP
// table bound: depth-first over amounts sorted descending, pruned by subset size
// and by the remaining achievable range. Once the solution cap fills, a new
// subset only enters by evicting the kept subset with the largest residual, so
// an exact match is never dropped.
func enumerateSubsetsDFS(amounts []int64, lo, hi, target int64, maxSize int) [][]int {
	idx := make([]int, len(amounts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return amounts[idx[a]] > amounts[idx[b]] })

	suffix := make([]int64, len(idx)+1)
	for i := len(idx) - 1; i >= 0; i-- {
		suffix[i] = suffix[i+1] + amounts[idx[i]]
	}

	var results [][]int
	var residuals []int64
	var chosen []int

	record := func(sum int64) {
		subset := make([]int, len(chosen))
		copy(subset, chosen)
		residual := sum - target
		if residual < 0 {
			residual = -residual
		}
		if len(results) < maxSolutions {
			results = append(results, subset)
			residuals = append(residuals, residual)
			return
		}
		worstIdx := 0
		for i := 1; i < len(residuals); i++ {
			if residuals[i] > residuals[worstIdx] {
				worstIdx = i
			}
		}
		if residual < residuals[worstIdx] {
			results[worstIdx] = subset
			residuals[worstIdx] = residual
		}
	}

	var walk func(pos int, sum int64)
	walk = func(pos int, sum int64) {
		if sum >= lo && sum <= hi && len(chosen) > 0 {
			record(sum)
		}
		if pos == len(idx) || len(chosen) == maxSize || sum+suffix[pos] < lo || sum > hi {
			return
		}
		chosen = append(chosen, idx[pos])
		walk(pos+1, sum+amounts[idx[pos]])
		chosen = chosen[:len(chosen)-1]
		walk(pos+1, sum)
	}
	walk(0, 0)
	return results
}
