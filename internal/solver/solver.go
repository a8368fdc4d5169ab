// Package solver maximizes a linear objective over binary decision variables
// subject to linear constraints. It is a small exact branch-and-bound: the
// squad and lineup problems it serves are 0/1 selection problems with a
// handful of knapsack-style constraints, far below the scale where a general
// MIP engine earns its keep.
//
// Pruning leans on the structure those problems share. Constraints whose
// nonzero coefficients are all 1 act as pick-count caps and are grouped into
// disjoint families (squad size, one family per position quota set, one per
// club cap set); each family yields a greedy top-allowance bound. A budget
// row with nonnegative coefficients is folded into those caps with a
// Lagrangian multiplier chosen once at the root, which keeps the bound tight
// when the budget binds. Every bound is valid on its own, so the search takes
// the minimum and stays exact.
//
// The search is fully deterministic: variables are explored in a fixed order
// (objective coefficient descending, variable index ascending), the
// include-branch is tried before the exclude-branch, and an incumbent is only
// replaced by a strictly better objective. Among equal-objective optima the
// first assignment found in that order wins, which pins the tie-break
// behavior callers can rely on.
package solver

import (
	"errors"
	"math"
	"sort"
)

// ErrInfeasible is returned when no assignment satisfies all constraints.
var ErrInfeasible = errors.New("no feasible assignment satisfies the constraints")

const eps = 1e-6

// Sense is the relation of a constraint's weighted sum to its bound.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

type constraint struct {
	coeffs []float64 // dense, one per variable
	sense  Sense
	bound  float64
}

// Problem is a 0/1 program under construction. Variables are indexed
// 0..n-1; coefficients default to zero.
type Problem struct {
	n    int
	obj  []float64
	cons []constraint
}

func NewProblem(numVars int) *Problem {
	return &Problem{
		n:   numVars,
		obj: make([]float64, numVars),
	}
}

// NumVars returns the number of decision variables.
func (p *Problem) NumVars() int { return p.n }

// SetObjective assigns the objective coefficient for variable v.
func (p *Problem) SetObjective(v int, c float64) {
	p.obj[v] = c
}

// AddConstraint adds Σ coeffs[v]·x[v] (sense) bound. Variables absent from
// coeffs contribute nothing.
func (p *Problem) AddConstraint(coeffs map[int]float64, sense Sense, bound float64) {
	dense := make([]float64, p.n)
	for v, c := range coeffs {
		dense[v] = c
	}
	p.cons = append(p.cons, constraint{coeffs: dense, sense: sense, bound: bound})
}

// Solution is an optimal assignment.
type Solution struct {
	Values    []bool // indexed by variable
	Objective float64
}

// Solve runs the branch-and-bound search and returns the optimal assignment,
// or ErrInfeasible when the constraints admit none.
func (p *Problem) Solve() (*Solution, error) {
	s := newSearch(p)
	s.dfs(0, 0)
	if !s.found {
		return nil, ErrInfeasible
	}
	values := make([]bool, p.n)
	for k, set := range s.best {
		if set {
			values[s.order[k]] = true
		}
	}
	return &Solution{Values: values, Objective: s.bestObj}, nil
}

// capFamily is a set of pairwise-disjoint pick-count caps. Disjointness makes
// the greedy top-allowance walk over a family an exact relaxation optimum,
// hence a valid upper bound.
type capFamily struct {
	caps    []int  // constraint indices
	covered []bool // per search position
}

// boundPlan is one precomputed upper-bound evaluator: a cap family, an
// optional budget row with a fixed Lagrangian multiplier, and the search
// positions ordered by the resulting reduced objective.
type boundPlan struct {
	budget int // constraint index of the budget row, -1 for none
	lambda float64
	caps   []int     // cap constraint indices of the family
	capOf  []int     // per search position: slot in caps, -1 when uncovered
	red    []float64 // reduced objective per search position
	order  []int     // search positions, red descending then position ascending
}

type search struct {
	p     *Problem
	order []int // variable index per search position

	objAt  []float64   // objective coefficient per search position
	posSum []float64   // prefix sums of positive objAt (positives lead the order)
	posCnt int         // count of positive objective coefficients
	coeffs [][]float64 // per constraint, coefficient per search position
	minSuf [][]float64 // per constraint, minimal suffix contribution from position k
	maxSuf [][]float64 // per constraint, maximal suffix contribution from position k
	plans  []boundPlan
	allow  []int // scratch allowances, sized to the largest family

	sums    []float64 // running constraint sums
	picks   []bool    // assignment per search position
	best    []bool
	bestObj float64
	found   bool
}

func newSearch(p *Problem) *search {
	n := p.n
	s := &search{
		p:       p,
		order:   make([]int, n),
		sums:    make([]float64, len(p.cons)),
		picks:   make([]bool, n),
		bestObj: math.Inf(-1),
	}
	for i := range s.order {
		s.order[i] = i
	}
	sort.SliceStable(s.order, func(a, b int) bool {
		oa, ob := p.obj[s.order[a]], p.obj[s.order[b]]
		if oa != ob {
			return oa > ob
		}
		return s.order[a] < s.order[b]
	})

	s.objAt = make([]float64, n)
	for k, v := range s.order {
		s.objAt[k] = p.obj[v]
	}
	s.posSum = make([]float64, n+1)
	for k := 0; k < n; k++ {
		if s.objAt[k] > 0 {
			s.posCnt = k + 1
			s.posSum[k+1] = s.posSum[k] + s.objAt[k]
		} else {
			s.posSum[k+1] = s.posSum[k]
		}
	}

	s.coeffs = make([][]float64, len(p.cons))
	s.minSuf = make([][]float64, len(p.cons))
	s.maxSuf = make([][]float64, len(p.cons))
	for ci, c := range p.cons {
		cc := make([]float64, n)
		for k, v := range s.order {
			cc[k] = c.coeffs[v]
		}
		minS := make([]float64, n+1)
		maxS := make([]float64, n+1)
		for k := n - 1; k >= 0; k-- {
			minS[k] = minS[k+1] + math.Min(cc[k], 0)
			maxS[k] = maxS[k+1] + math.Max(cc[k], 0)
		}
		s.coeffs[ci] = cc
		s.minSuf[ci] = minS
		s.maxSuf[ci] = maxS
	}
	s.buildPlans()
	return s
}

// buildPlans classifies the constraints and assembles the bound evaluators
// used for pruning.
func (s *search) buildPlans() {
	n := s.p.n
	var caps []int    // nonzero coefficients all 1, sense LessEq or Equal
	var budgets []int // LessEq with nonnegative coefficients, not a cap
	for ci, c := range s.p.cons {
		ones, nonneg, nonzero := true, true, false
		for _, v := range s.coeffs[ci] {
			if v < -eps {
				nonneg = false
			}
			if math.Abs(v) > eps {
				nonzero = true
				if math.Abs(v-1) > eps {
					ones = false
				}
			}
		}
		if !nonzero {
			continue
		}
		switch {
		case ones && c.sense != GreaterEq:
			caps = append(caps, ci)
		case nonneg && c.sense == LessEq:
			budgets = append(budgets, ci)
		}
	}

	var families []capFamily
nextCap:
	for _, ci := range caps {
		for fi := range families {
			f := &families[fi]
			overlap := false
			for k := 0; k < n; k++ {
				if s.coeffs[ci][k] > eps && f.covered[k] {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			f.caps = append(f.caps, ci)
			for k := 0; k < n; k++ {
				if s.coeffs[ci][k] > eps {
					f.covered[k] = true
				}
			}
			continue nextCap
		}
		f := capFamily{caps: []int{ci}, covered: make([]bool, n)}
		for k := 0; k < n; k++ {
			if s.coeffs[ci][k] > eps {
				f.covered[k] = true
			}
		}
		families = append(families, f)
	}

	maxCaps := 0
	for _, f := range families {
		if len(f.caps) > maxCaps {
			maxCaps = len(f.caps)
		}
	}
	s.allow = make([]int, maxCaps)

	for fi := range families {
		s.plans = append(s.plans, s.makePlan(-1, 0, &families[fi]))
	}
	for _, b := range budgets {
		if len(families) == 0 {
			if l := s.pickLambda(b, nil); l > 0 {
				s.plans = append(s.plans, s.makePlan(b, l, nil))
			}
			continue
		}
		for fi := range families {
			if l := s.pickLambda(b, &families[fi]); l > 0 {
				s.plans = append(s.plans, s.makePlan(b, l, &families[fi]))
			}
		}
	}
}

func (s *search) makePlan(budget int, lambda float64, fam *capFamily) boundPlan {
	n := s.p.n
	pb := boundPlan{
		budget: budget,
		lambda: lambda,
		capOf:  make([]int, n),
		red:    make([]float64, n),
		order:  make([]int, n),
	}
	for k := 0; k < n; k++ {
		pb.red[k] = s.objAt[k]
		if budget >= 0 {
			pb.red[k] -= lambda * s.coeffs[budget][k]
		}
		pb.capOf[k] = -1
		pb.order[k] = k
	}
	if fam != nil {
		pb.caps = fam.caps
		for slot, ci := range fam.caps {
			for k := 0; k < n; k++ {
				if s.coeffs[ci][k] > eps {
					pb.capOf[k] = slot
				}
			}
		}
	}
	sort.SliceStable(pb.order, func(a, b int) bool {
		return pb.red[pb.order[a]] > pb.red[pb.order[b]]
	})
	return pb
}

// pickLambda grid-searches the multiplier giving the tightest root bound for
// one budget row paired with one cap family. Any nonnegative multiplier
// yields a valid bound, so the pick only affects pruning strength. Returns 0
// when no multiplier beats the multiplier-free family bound.
func (s *search) pickLambda(b int, fam *capFamily) float64 {
	var ds []float64
	for k := 0; k < s.p.n; k++ {
		if s.objAt[k] > 0 && s.coeffs[b][k] > eps {
			ds = append(ds, s.objAt[k]/s.coeffs[b][k])
		}
	}
	if len(ds) == 0 {
		return 0
	}
	sort.Float64s(ds)
	const maxCand = 32
	step := 1
	if len(ds) > maxCand {
		step = len(ds) / maxCand
	}
	bestL, bestV := 0.0, math.Inf(1)
	for i := 0; i < len(ds); i += step {
		pb := s.makePlan(b, ds[i], fam)
		if v := s.planBound(&pb, 0); v < bestV-eps {
			bestV, bestL = v, ds[i]
		}
	}
	base := s.makePlan(-1, 0, fam)
	if bestV >= s.planBound(&base, 0)-eps {
		return 0
	}
	return bestL
}

// planBound is the plan's bound on the objective gain any completion of the
// first k assignments can add: the remaining budget priced at the multiplier,
// plus the reduced-objective greedy over remaining positions honoring the
// family's remaining allowances.
func (s *search) planBound(pb *boundPlan, k int) float64 {
	total := 0.0
	if pb.budget >= 0 {
		rem := s.p.cons[pb.budget].bound - s.sums[pb.budget]
		if rem < 0 {
			rem = 0
		}
		total += pb.lambda * rem
	}
	allow := s.allow[:len(pb.caps)]
	for i, ci := range pb.caps {
		a := int(math.Floor(s.p.cons[ci].bound - s.sums[ci] + eps))
		if a < 0 {
			a = 0
		}
		allow[i] = a
	}
	for _, pos := range pb.order {
		if pos < k {
			continue
		}
		r := pb.red[pos]
		if r <= 0 {
			break
		}
		if slot := pb.capOf[pos]; slot >= 0 {
			if allow[slot] == 0 {
				continue
			}
			allow[slot]--
		}
		total += r
	}
	return total
}

// feasible reports whether some completion of the first k assignments can
// still satisfy every constraint.
func (s *search) feasible(k int) bool {
	for ci, c := range s.p.cons {
		sum := s.sums[ci]
		lo := sum + s.minSuf[ci][k]
		hi := sum + s.maxSuf[ci][k]
		switch c.sense {
		case LessEq:
			if lo > c.bound+eps {
				return false
			}
		case GreaterEq:
			if hi < c.bound-eps {
				return false
			}
		case Equal:
			if lo > c.bound+eps || hi < c.bound-eps {
				return false
			}
		}
	}
	return true
}

// upperBound is the best objective any completion of the first k assignments
// can reach: the minimum over the bound plans, or the plain positive-suffix
// sum when the problem offers no structure to plan around.
func (s *search) upperBound(k int, cur float64) float64 {
	if len(s.plans) == 0 {
		from := k
		if from > s.posCnt {
			from = s.posCnt
		}
		return cur + s.posSum[s.posCnt] - s.posSum[from]
	}
	best := math.Inf(1)
	for i := range s.plans {
		if v := s.planBound(&s.plans[i], k); v < best {
			best = v
		}
	}
	return cur + best
}

func (s *search) dfs(k int, cur float64) {
	if !s.feasible(k) {
		return
	}
	if k == s.p.n {
		if !s.found || cur > s.bestObj+eps {
			s.found = true
			s.bestObj = cur
			s.best = append(s.best[:0], s.picks...)
		}
		return
	}
	if s.upperBound(k, cur) <= s.bestObj+eps {
		return
	}

	// Include first: with the order sorted by coefficient this reaches
	// strong incumbents early and keeps the pinned tie-break simple.
	s.picks[k] = true
	for ci := range s.sums {
		s.sums[ci] += s.coeffs[ci][k]
	}
	s.dfs(k+1, cur+s.objAt[k])
	for ci := range s.sums {
		s.sums[ci] -= s.coeffs[ci][k]
	}
	s.picks[k] = false

	s.dfs(k+1, cur)
}
