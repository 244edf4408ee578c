package domain

import "fmt"

// SubType is the kind of operation a task performs.
type SubType string

const (
	// default value for tasks which do not tell their operation.
	Empty SubType = "EMPTY"

	// topic models
	RunRootTopicTraining         SubType = "RUN_ROOT_TOPIC_TRAINING"
	RunHierarchicalTopicTraining SubType = "RUN_HIERARCHICAL_TOPIC_TRAINING"
	ResetTopicModel              SubType = "RESET_TOPIC_MODEL"
	FuseTopicModel               SubType = "FUSE_TOPIC_MODEL"
	SortTopicModel               SubType = "SORT_TOPIC_MODEL"

	// domain models
	RunRootDomainTraining   SubType = "RUN_ROOT_DOMAIN_TRAINING"
	RetrainDomainModel      SubType = "RETRAIN_DOMAIN_MODEL"
	ClassifyDomainModel     SubType = "CLASSIFY_DOMAIN_MODEL"
	EvaluateDomainModel     SubType = "EVALUATE_DOMAIN_MODEL"
	SampleDomainModel       SubType = "SAMPLE_DOMAIN_MODEL"
	GiveFeedbackDomainModel SubType = "GIVE_FEEDBACK_DOMAIN_MODEL"
)

func (s SubType) String() string {
	return string(s)
}

// SubTypes returns all SubTypes which denote an operation.
//
// Empty is not included.
func SubTypes() []SubType {
	return []SubType{
		RunRootTopicTraining, RunHierarchicalTopicTraining,
		ResetTopicModel, FuseTopicModel, SortTopicModel,
		RunRootDomainTraining,
		RetrainDomainModel, ClassifyDomainModel, EvaluateDomainModel,
		SampleDomainModel, GiveFeedbackDomainModel,
	}
}

func AsSubType(s string) (SubType, error) {
	if s == string(Empty) {
		return Empty, nil
	}
	for _, st := range SubTypes() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: '%s' is not SubType", ErrUnknown, s)
}

// Classify tells which Category the operation belongs to.
//
// # Returns
//
// - Category: Training or Curating
//
// - error: ErrUnclassifiable when the SubType is Empty or not known.
// It means a bug of the caller (or a backend newer than this module); do not default it.
func Classify(s SubType) (Category, error) {
	switch s {
	case RunRootTopicTraining, RunHierarchicalTopicTraining, RunRootDomainTraining:
		return Training, nil
	case ResetTopicModel, FuseTopicModel, SortTopicModel,
		RetrainDomainModel, ClassifyDomainModel, EvaluateDomainModel,
		SampleDomainModel, GiveFeedbackDomainModel:
		return Curating, nil
	}
	return "", fmt.Errorf("%w: subType '%s'", ErrUnclassifiable, s)
}

// MustClassify is Classify, but panics for unclassifiable SubType.
func MustClassify(s SubType) Category {
	c, err := Classify(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (s SubType) Category() (Category, error) {
	return Classify(s)
}

// ModelKind is a kind of models which a task works on.
type ModelKind string

const (
	TopicModel  ModelKind = "topic"
	DomainModel ModelKind = "domain"
)

// Model tells which kind of model the operation works on.
//
// For Empty or unknown SubType, it returns ("", false).
func (s SubType) Model() (ModelKind, bool) {
	switch s {
	case RunRootTopicTraining, RunHierarchicalTopicTraining,
		ResetTopicModel, FuseTopicModel, SortTopicModel:
		return TopicModel, true
	case RunRootDomainTraining,
		RetrainDomainModel, ClassifyDomainModel, EvaluateDomainModel,
		SampleDomainModel, GiveFeedbackDomainModel:
		return DomainModel, true
	}
	return "", false
}
