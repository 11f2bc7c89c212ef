package domain

import "errors"

var ErrPipelineNotFound = errors.New("pipeline not found")
var ErrStageNotFound = errors.New("pipeline stage not found")
var ErrDefaultPipeline = errors.New("the default pipeline cannot be deleted")
var ErrNoStages = errors.New("a pipeline must keep at least one stage")

// Stage is one named step of a sales funnel.
type Stage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Pipeline is an ordered funnel of stages a lead can occupy. Exactly one
// pipeline is flagged as the default.
type Pipeline struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Stages    []Stage `json:"stages"`
	IsDefault bool    `json:"is_default"`
	Version   int64   `json:"version"`
}

// HasStage reports whether the pipeline contains a stage with the given id.
func (p *Pipeline) HasStage(stageID string) bool {
	for _, s := range p.Stages {
		if s.ID == stageID {
			return true
		}
	}
	return false
}
