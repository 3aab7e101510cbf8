// Package api exposes the circuit solver over HTTP using
// github.com/gin-gonic/gin, mirroring original_source/backend/app.py's
// single /api/solve-circuit endpoint and response shape. Structured
// logging follows the teacher's split between a quiet pkg/ and a chatty
// entrypoint: handlers log through a request-scoped
// github.com/hashicorp/go-hclog sub-logger, never the solver core itself.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DarsenOP/tapece/pkg/analysis"
	"github.com/DarsenOP/tapece/pkg/circuit"
	"github.com/DarsenOP/tapece/pkg/equation"
	"github.com/DarsenOP/tapece/pkg/netlist"
	"github.com/DarsenOP/tapece/pkg/solver"
	"github.com/DarsenOP/tapece/pkg/topology"
	"github.com/DarsenOP/tapece/pkg/xerr"
)

var solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "tapece_solve_duration_seconds",
	Help: "Time spent parsing, analyzing, and solving one circuit request.",
})

var solveErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tapece_solve_errors_total",
	Help: "Count of solve requests that failed, labeled by error code.",
}, []string{"code"})

// SolutionComponent is one entry of SolveResponse.Solution.Components.
type SolutionComponent struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Node1       int     `json:"node1"`
	Node2       int     `json:"node2"`
	Voltage     float64 `json:"voltage"`
	Current     float64 `json:"current"`
	Power       float64 `json:"power"`
	Description string  `json:"description"`
}

// MatrixSolution mirrors circuit_solver.py's matrix_solution payload.
type MatrixSolution struct {
	ConductanceMatrix [][]float64 `json:"conductance_matrix"`
	CurrentVector     []float64   `json:"current_vector"`
	VoltageSolution   []float64   `json:"voltage_solution"`
	MatrixEquation    string      `json:"matrix_equation"`
	SolutionMethod    string      `json:"solution_method"`
	Verification      struct {
		Residual []float64 `json:"residual"`
		MaxError float64   `json:"max_error"`
	} `json:"verification"`
}

// Solution is the numerical solve result, shaped per spec.md §6.
type Solution struct {
	Status         string              `json:"status"`
	Voltages       map[string]float64  `json:"voltages"`
	Components     []SolutionComponent `json:"components"`
	TotalPower     float64             `json:"total_power"`
	MatrixSolution MatrixSolution      `json:"matrix_solution"`
	Summary        struct {
		TotalComponents int  `json:"total_components"`
		SolvedNodes     int  `json:"solved_nodes"`
		PowerBalance    bool `json:"power_balance"`
	} `json:"summary"`
}

// CircuitInfo is the topology summary accompanying a solved response.
type CircuitInfo struct {
	TotalComponents   int     `json:"total_components"`
	TotalNodes        int     `json:"total_nodes"`
	NonReferenceNodes []int   `json:"non_reference_nodes"`
	ReferenceNode     int     `json:"reference_node"`
	Supernodes        [][]int `json:"supernodes"`
}

// SolveResponse is the full success response body.
type SolveResponse struct {
	Success     bool              `json:"success"`
	Analysis    analysis.Analysis `json:"analysis"`
	Solution    Solution          `json:"solution"`
	CircuitInfo CircuitInfo       `json:"circuit_info"`
}

// ErrorResponse is the full failure response body (spec.md §6).
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// NewRouter builds the gin engine serving the solver. enableCORS gates
// permissive cross-origin headers, off by default unlike the Python
// backend's unconditional flask_cors.CORS(app) (see DESIGN.md).
func NewRouter(logger hclog.Logger, enableCORS bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	if enableCORS {
		r.Use(corsMiddleware())
	}

	r.GET("/healthz", healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/api/solve-circuit", solveHandler(logger))

	return r
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "tapece is running"})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestLogger(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := logger.Named("request").With("path", c.Request.URL.Path, "method", c.Request.Method)
		c.Set("logger", sub)
		sub.Debug("handling request")
		c.Next()
		sub.Info("handled request", "status", c.Writer.Status())
	}
}

func loggerFrom(c *gin.Context) hclog.Logger {
	if l, ok := c.Get("logger"); ok {
		if lg, ok := l.(hclog.Logger); ok {
			return lg
		}
	}
	return hclog.NewNullLogger()
}

func solveHandler(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := loggerFrom(c)
		timer := prometheus.NewTimer(solveDuration)
		defer timer.ObserveDuration()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			writeError(c, log, xerr.Newf(xerr.InvalidShape, "could not read request body: %v", err))
			return
		}

		circ, err := netlist.Parse(body)
		if err != nil {
			writeError(c, log, err)
			return
		}

		log.Info("model built", "components", len(circ.Components()))

		topo := topology.Analyze(circ)
		eqs := equation.Generate(circ, topo)

		res, err := solver.Solve(circ)
		if err != nil {
			writeError(c, log, err)
			return
		}

		log.Info("circuit solved", "max_residual", res.MaxResidual)
		c.JSON(http.StatusOK, buildResponse(circ, topo, eqs, res))
	}
}

func buildResponse(circ *circuit.Circuit, topo *topology.Topology, eqs []equation.Equation, res *solver.Result) SolveResponse {
	ids := analysis.CanonicalIDs(circ)

	voltages := make(map[string]float64, len(res.NodeVoltages))
	for node, v := range res.NodeVoltages {
		voltages[itoa(node)] = v
	}

	comps := circ.Components()
	components := make([]SolutionComponent, 0, len(comps))
	totalPower := 0.0
	for _, comp := range comps {
		cr := res.Components[comp.ID()]
		n1, n2 := comp.Nodes()
		components = append(components, SolutionComponent{
			ID:          comp.ID(),
			Type:        componentTypeName(ids[comp.ID()]),
			Value:       comp.Value(),
			Node1:       n1,
			Node2:       n2,
			Voltage:     cr.Voltage,
			Current:     cr.Current,
			Power:       cr.Power,
			Description: analysis.PowerDescription(cr.Power),
		})
		totalPower += cr.Power
	}

	var ms MatrixSolution
	ms.ConductanceMatrix = res.ConductanceMatrix
	ms.CurrentVector = res.CurrentVector
	ms.VoltageSolution = res.SolutionVector
	ms.MatrixEquation = "[G][X] = [Z]"
	ms.SolutionMethod = "Modified Nodal Analysis (MNA)"
	ms.Verification.Residual = res.Residual
	ms.Verification.MaxError = res.MaxResidual

	var sol Solution
	sol.Status = "success"
	sol.Voltages = voltages
	sol.Components = components
	sol.TotalPower = totalPower
	sol.MatrixSolution = ms
	sol.Summary.TotalComponents = len(comps)
	sol.Summary.SolvedNodes = len(voltages)
	sol.Summary.PowerBalance = abs(totalPower) < res.PowerBalanceTolerance

	return SolveResponse{
		Success:  true,
		Analysis: analysis.Build(circ, topo, eqs),
		Solution: sol,
		CircuitInfo: CircuitInfo{
			TotalComponents:   len(comps),
			TotalNodes:        len(circ.Nodes()),
			NonReferenceNodes: circ.NonReferenceNodes(),
			ReferenceNode:     circ.Reference(),
			Supernodes:        supernodeNodeLists(topo),
		},
	}
}

func componentTypeName(canonicalID string) string {
	switch {
	case len(canonicalID) == 0:
		return ""
	case canonicalID[0] == 'R':
		return "Resistor"
	case len(canonicalID) >= 2 && canonicalID[:2] == "VS":
		return "Voltage Source"
	default:
		return "Current Source"
	}
}

func supernodeNodeLists(topo *topology.Topology) [][]int {
	out := make([][]int, 0, len(topo.Supernodes))
	for _, sn := range topo.Supernodes {
		out = append(out, append([]int(nil), sn.Nodes...))
	}
	return out
}

// writeError maps an xerr.Code to an HTTP status and writes the
// spec.md §6 error response shape. Input and modeling errors are client
// errors (400); numerical errors are reported with a suggestion;
// anything else is an unexpected server error whose detail is logged but
// not echoed to the caller.
func writeError(c *gin.Context, log hclog.Logger, err error) {
	var xe *xerr.Error
	if !errors.As(err, &xe) {
		log.Error("unexpected solve failure", "error", err)
		solveErrors.WithLabelValues("unexpected").Inc()
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "an unexpected server error occurred",
		})
		return
	}

	solveErrors.WithLabelValues(string(xe.Code)).Inc()
	status := http.StatusBadRequest
	if xe.Code == xerr.SingularMatrix || xe.Code == xerr.NonFiniteResult {
		status = http.StatusUnprocessableEntity
	}

	if status >= 500 {
		log.Error("solve failed", "code", xe.Code, "error", xe.Error())
	} else {
		log.Warn("client input rejected", "code", xe.Code, "error", xe.Error())
	}

	c.JSON(status, ErrorResponse{
		Success:    false,
		Error:      xe.Error(),
		Suggestion: xe.Suggestion,
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
