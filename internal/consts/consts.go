package consts

const (
	// ResidualTolerance bounds max|G*X - Z| for a well-conditioned system
	// (spec: Residual invariant).
	ResidualTolerance = 1e-9

	// SingularPivotTolerance is a pivot-magnitude threshold. No code reads
	// it: the solver reports a singular matrix only when the sparse LU
	// factorization or solve itself returns an error.
	SingularPivotTolerance = 1e-12

	// PowerBalanceBaseTolerance is the fixed component of the power
	// conservation tolerance: eps = PowerBalanceBaseTolerance * (1 + max|V|*max|I|).
	PowerBalanceBaseTolerance = 1e-6
)
