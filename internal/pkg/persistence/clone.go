package persistence

import "time"

// Clone makes a deep copy of the job, so callers can't mutate stored values
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	res := *j
	if j.Transcription != nil {
		t := *j.Transcription
		t.Segments = cloneSlice(j.Transcription.Segments)
		res.Transcription = &t
	}
	if j.Frames != nil {
		res.Frames = make([]Frame, len(j.Frames))
		for i, f := range j.Frames {
			f.Tags = cloneSlice(f.Tags)
			res.Frames[i] = f
		}
	}
	if j.Analysis != nil {
		a := *j.Analysis
		a.Topics = cloneSlice(a.Topics)
		a.KeyPoints = cloneSlice(a.KeyPoints)
		a.Outline = cloneSlice(a.Outline)
		a.TargetAudience = cloneSlice(a.TargetAudience)
		res.Analysis = &a
	}
	if j.Document != nil {
		d := *j.Document
		d.Sections = cloneSlice(d.Sections)
		d.Tags = cloneSlice(d.Tags)
		res.Document = &d
	}
	res.Started = cloneTime(j.Started)
	res.Completed = cloneTime(j.Completed)
	return &res
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	res := make([]T, len(in))
	copy(res, in)
	return res
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	res := *t
	return &res
}
