package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/katalvlaran/unmix/graph"
	"github.com/katalvlaran/unmix/internal/cli/config"
	"github.com/katalvlaran/unmix/unmix"
)

// report is the JSON view of an unmixing result.
type report struct {
	K             int               `json:"k"`
	BIC           float64           `json:"bic"`
	Score         float64           `json:"score"`
	LogLikelihood float64           `json:"log_likelihood"`
	Iterations    int               `json:"iterations"`
	Converged     bool              `json:"converged"`
	Sizes         []int             `json:"sizes"`
	Weights       []float64         `json:"weights"`
	Means         [][]float64       `json:"means"`
	Labels        []int             `json:"labels"`
	Candidates    []unmix.Candidate `json:"candidates,omitempty"`
	Graphs        [][]graph.Edge    `json:"graphs,omitempty"`
	Entropy       *entropyReport    `json:"entropy,omitempty"`
	ARI           *float64          `json:"ari,omitempty"`
	GraphMatches  []graphMatch      `json:"graph_matches,omitempty"`
}

// truthScores holds the agreement with known regimes; unset fields are not
// reported.
type truthScores struct {
	ARI     *float64
	Matches []graphMatch
}

// graphMatch pairs a cluster's graph with the closest true regime graph.
type graphMatch struct {
	Cluster     int     `json:"cluster"`
	Regime      int     `json:"regime"`
	AdjacencyF1 float64 `json:"adjacency_f1"`
	ArrowF1     float64 `json:"arrow_f1"`
	SHD         int     `json:"shd"`
}

// matchGraphs matches every cluster graph against truths independently, so two
// clusters may land on the same regime. Clusters without a graph are skipped.
func matchGraphs(truths, est []*graph.Graph) ([]graphMatch, error) {
	out := make([]graphMatch, 0, len(est))
	for k, g := range est {
		if g == nil {
			continue
		}
		m, err := graph.BestMatch(truths, g)
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", k, err)
		}
		out = append(out, graphMatch{
			Cluster:     k,
			Regime:      m.Index,
			AdjacencyF1: m.Diff.AdjacencyF1,
			ArrowF1:     m.Diff.ArrowF1,
			SHD:         m.Diff.SHD,
		})
	}

	return out, nil
}

type entropyReport struct {
	Mean        float64 `json:"mean"`
	Confident90 float64 `json:"confident_90"`
	Confident80 float64 `json:"confident_80"`
}

func newReport(res *unmix.Result, scores truthScores) report {
	r := report{
		K:             res.K,
		BIC:           res.BIC,
		Score:         res.Score,
		LogLikelihood: res.Model.LogLikelihood,
		Iterations:    res.Model.Iterations,
		Converged:     res.Model.Converged,
		Sizes:         res.Sizes(),
		Weights:       res.Model.Weights,
		Means:         res.Model.Means.ToRows(),
		Labels:        res.Labels,
		Candidates:    res.Candidates,
		ARI:           scores.ARI,
		GraphMatches:  scores.Matches,
	}
	if e, err := unmix.EntropyStats(res.Model.Responsibilities); err == nil {
		r.Entropy = &entropyReport{Mean: e.Mean, Confident90: e.Confident90, Confident80: e.Confident80}
	}
	if res.Graphs != nil {
		r.Graphs = make([][]graph.Edge, len(res.Graphs))
		for k, g := range res.Graphs {
			if g != nil {
				r.Graphs[k] = g.Edges()
			}
		}
	}

	return r
}

// render writes res as tables or JSON together with any truth scores.
func render(w io.Writer, format string, res *unmix.Result, scores truthScores) error {
	if format == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newReport(res, scores))
	}

	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle("Mixture")
	summary.AppendHeader(table.Row{"K", "BIC", "Score", "Log-likelihood", "Iterations", "Converged", "Entropy", "≥0.9"})
	row := table.Row{
		res.K,
		fmt.Sprintf("%.3f", res.BIC),
		fmt.Sprintf("%.3f", res.Score),
		fmt.Sprintf("%.3f", res.Model.LogLikelihood),
		res.Model.Iterations,
		res.Model.Converged,
	}
	if e, err := unmix.EntropyStats(res.Model.Responsibilities); err == nil {
		row = append(row, fmt.Sprintf("%.3f", e.Mean), fmt.Sprintf("%.1f%%", 100*e.Confident90))
	} else {
		row = append(row, "-", "-")
	}
	summary.AppendRow(row)
	summary.Render()

	clusters := table.NewWriter()
	clusters.SetOutputMirror(w)
	clusters.SetStyle(table.StyleLight)
	clusters.SetTitle("Clusters")
	header := table.Row{"Cluster", "Rows", "Weight"}
	if res.Graphs != nil {
		header = append(header, "Edges")
	}
	clusters.AppendHeader(header)
	sizes := res.Sizes()
	for k := 0; k < res.K; k++ {
		row := table.Row{k, sizes[k], fmt.Sprintf("%.4f", res.Model.Weights[k])}
		if res.Graphs != nil {
			row = append(row, edgeList(res.Graphs[k]))
		}
		clusters.AppendRow(row)
	}
	clusters.Render()

	if len(res.Candidates) > 0 {
		cand := table.NewWriter()
		cand.SetOutputMirror(w)
		cand.SetStyle(table.StyleLight)
		cand.SetTitle("K selection")
		cand.AppendHeader(table.Row{"K", "BIC", "Score", "Log-likelihood", "Iterations", "Selected"})
		for _, c := range res.Candidates {
			mark := ""
			if c.K == res.K {
				mark = "*"
			}
			cand.AppendRow(table.Row{
				c.K,
				fmt.Sprintf("%.3f", c.BIC),
				fmt.Sprintf("%.3f", c.Score),
				fmt.Sprintf("%.3f", c.LogLikelihood),
				c.Iterations,
				mark,
			})
		}
		cand.Render()
	}
	if len(scores.Matches) > 0 {
		match := table.NewWriter()
		match.SetOutputMirror(w)
		match.SetStyle(table.StyleLight)
		match.SetTitle("Graph recovery")
		match.AppendHeader(table.Row{"Cluster", "Regime", "Adjacency F1", "Arrow F1", "SHD"})
		for _, m := range scores.Matches {
			match.AppendRow(table.Row{
				m.Cluster,
				m.Regime,
				fmt.Sprintf("%.3f", m.AdjacencyF1),
				fmt.Sprintf("%.3f", m.ArrowF1),
				m.SHD,
			})
		}
		match.Render()
	}
	if scores.ARI != nil {
		if _, err := fmt.Fprintf(w, "Adjusted Rand index vs truth: %.4f\n", *scores.ARI); err != nil {
			return err
		}
	}

	return nil
}

func edgeList(g *graph.Graph) string {
	if g == nil {
		return "-"
	}
	edges := g.Edges()
	if len(edges) == 0 {
		return "(none)"
	}
	out := ""
	for i, e := range edges {
		if i > 0 {
			out += ", "
		}
		out += e.From + "→" + e.To
	}

	return out
}
