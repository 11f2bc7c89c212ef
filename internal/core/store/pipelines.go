package store

import (
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// AddPipeline creates a funnel. The very first pipeline becomes the default.
func (s *Store) AddPipeline(name string, stages []domain.Stage) (domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(stages) == 0 {
		s.pushError("A pipeline needs at least one stage.")
		return domain.Pipeline{}, domain.ErrNoStages
	}

	p := domain.Pipeline{
		ID:        newID(),
		Name:      name,
		Stages:    append([]domain.Stage(nil), stages...),
		IsDefault: s.defaultPipelineLocked() == nil,
		Version:   1,
	}
	for i := range p.Stages {
		if p.Stages[i].ID == "" {
			p.Stages[i].ID = newID()
		}
	}

	s.pipelines[p.ID] = p
	s.record(domain.ActionCreate, domain.KindPipeline, p.ID, p.Name, "pipeline created", nil, p)
	s.enqueueUpsert(ports.TablePipelines, p)
	s.pushSuccess("Pipeline " + p.Name + " created.")
	return clonePipeline(p), nil
}

// UpdatePipeline renames a funnel or replaces its stage list, which must
// keep at least one stage.
func (s *Store) UpdatePipeline(id, name string, stages []domain.Stage) (domain.Pipeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pipelines[id]
	if !ok {
		s.pushError("Pipeline not found.")
		return domain.Pipeline{}, domain.ErrPipelineNotFound
	}
	if stages != nil && len(stages) == 0 {
		s.pushError("A pipeline needs at least one stage.")
		return domain.Pipeline{}, domain.ErrNoStages
	}

	next := clonePipeline(prev)
	if name != "" {
		next.Name = name
	}
	if stages != nil {
		next.Stages = append([]domain.Stage(nil), stages...)
		for i := range next.Stages {
			if next.Stages[i].ID == "" {
				next.Stages[i].ID = newID()
			}
		}
	}
	next.Version = prev.Version + 1

	s.pipelines[id] = next
	s.record(domain.ActionUpdate, domain.KindPipeline, id, next.Name, "pipeline updated", prev, next)
	s.enqueueUpsert(ports.TablePipelines, next)
	s.pushSuccess("Pipeline " + next.Name + " updated.")
	return clonePipeline(next), nil
}

// DeletePipeline removes a funnel. The default pipeline cannot be deleted;
// leads sitting in the deleted funnel fall out of it but keep their history.
func (s *Store) DeletePipeline(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pipelines[id]
	if !ok {
		s.pushError("Pipeline not found.")
		return domain.ErrPipelineNotFound
	}
	if prev.IsDefault {
		s.pushError("The default pipeline cannot be deleted.")
		return domain.ErrDefaultPipeline
	}

	delete(s.pipelines, id)
	for cid, c := range s.clients {
		if c.PipelineID != id {
			continue
		}
		next := cloneClient(c)
		next.PipelineID = ""
		next.Stage = ""
		next.Version = c.Version + 1
		s.clients[cid] = next
		s.enqueueUpsert(ports.TableClients, next)
	}
	s.record(domain.ActionDelete, domain.KindPipeline, id, prev.Name, "pipeline deleted", prev, nil)
	s.enqueueDelete(ports.TablePipelines, id)
	s.pushSuccess("Pipeline " + prev.Name + " deleted.")
	return nil
}

// SetDefaultPipeline flags one funnel as the default, clearing the flag on
// every other.
func (s *Store) SetDefaultPipeline(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pipelines[id]
	if !ok {
		s.pushError("Pipeline not found.")
		return domain.ErrPipelineNotFound
	}
	if prev.IsDefault {
		return nil
	}

	for pid, p := range s.pipelines {
		if p.IsDefault {
			cleared := clonePipeline(p)
			cleared.IsDefault = false
			cleared.Version = p.Version + 1
			s.pipelines[pid] = cleared
			s.enqueueUpsert(ports.TablePipelines, cleared)
		}
	}
	next := clonePipeline(prev)
	next.IsDefault = true
	next.Version = prev.Version + 1
	s.pipelines[id] = next
	s.record(domain.ActionUpdate, domain.KindPipeline, id, next.Name, "set as default pipeline", prev, next)
	s.enqueueUpsert(ports.TablePipelines, next)
	return nil
}

// defaultPipelineLocked returns the default funnel, or nil when none exists.
// Must be called under the lock.
func (s *Store) defaultPipelineLocked() *domain.Pipeline {
	for _, p := range s.pipelines {
		if p.IsDefault {
			clone := clonePipeline(p)
			return &clone
		}
	}
	return nil
}
