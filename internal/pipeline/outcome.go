package pipeline

import "muraai/internal/heritage"

// Stage identifies where in the pipeline a failure happened.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageContent    Stage = "content"
	StageTranscribe Stage = "transcribe"
	StageAnalyze    Stage = "analyze"
	StagePersist    Stage = "persist"
)

// Failure captures a pipeline failure with the stage it occurred in.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	if f == nil || f.Err == nil {
		return ""
	}
	return string(f.Stage) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// Outcome is the result of one processing run. Exactly one of Item and
// Failure describes what happened: a completed item on success, a staged
// failure otherwise.
type Outcome struct {
	ItemID  string
	Item    *heritage.Item
	Failure *Failure
}

// Succeeded reports whether the run completed the item.
func (o Outcome) Succeeded() bool {
	return o.Failure == nil
}

func success(item *heritage.Item) Outcome {
	return Outcome{ItemID: item.ID, Item: item}
}

func failure(itemID string, stage Stage, err error) Outcome {
	return Outcome{ItemID: itemID, Failure: &Failure{Stage: stage, Err: err}}
}
