package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentcanvas/engine/pkg/models"
)

func sampleAgent() *models.DocumentAgent {
	return &models.DocumentAgent{
		Name:        "Invoice Triage",
		AgentNumber: 3,
		Objective:   "route invoices to the right queue",
		Tools:       []string{"slack", "jira"},
		Metrics:     models.Metrics{ROIContribution: models.ROIHigh},
	}
}

func TestSessionStartsInFormView(t *testing.T) {
	s := Edit(sampleAgent(), 2, 5)
	assert.Equal(t, FormActive, s.View())
	assert.Equal(t, 2, s.Index())
	assert.False(t, s.Closed())
}

func TestEditDraftIsADeepCopy(t *testing.T) {
	target := sampleAgent()
	s := Edit(target, 0, 1)

	form := s.Form()
	form.Name = "Renamed"
	form.Tools[0] = "github"
	require.NoError(t, s.SetForm(form))

	assert.Equal(t, "Invoice Triage", target.Name)
	assert.Equal(t, "slack", target.Tools[0])
}

func TestSwitchToTextSerializesDraft(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())

	assert.Equal(t, TextActive, s.View())
	assert.Contains(t, s.Text(), "name: Invoice Triage")
	assert.Contains(t, s.Text(), "agentNumber: 3")
}

func TestSwitchToTextBlockedByInvalidForm(t *testing.T) {
	s := Create(&models.DocumentAgent{}, 0)
	err := s.SwitchToText()

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	// The transition was aborted.
	assert.Equal(t, FormActive, s.View())
}

func TestRoundTripThroughText(t *testing.T) {
	s := Create(&models.DocumentAgent{Name: "Minimal"}, 0)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SwitchToForm())

	draft := s.Form()
	assert.Equal(t, "Minimal", draft.Name)
	// Optional fields come back as their documented defaults.
	assert.Equal(t, []string{}, draft.Tools)
	assert.Equal(t, []string{}, draft.JourneySteps)
	assert.Equal(t, models.ROIMedium, draft.Metrics.ROIContribution)
}

func TestSwitchToFormParseError(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SetText("name: [unclosed"))

	err := s.SwitchToForm()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	// Text view stays active and untouched for correction.
	assert.Equal(t, TextActive, s.View())
	assert.Equal(t, "name: [unclosed", s.Text())
}

func TestSwitchToFormShapeErrorOnList(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SetText("- a\n- b\n"))

	err := s.SwitchToForm()
	var serr *ShapeError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "a list")

	// The form fields remain whatever they were before the attempted switch.
	assert.Equal(t, TextActive, s.View())
	assert.Equal(t, "Invoice Triage", s.Form().Name)
}

func TestSwitchToFormShapeErrorOnScalar(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SetText("just a string\n"))

	var serr *ShapeError
	require.ErrorAs(t, s.SwitchToForm(), &serr)
}

func TestSwitchToFormShapeErrorOnEmpty(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SetText("   \n"))

	var serr *ShapeError
	require.ErrorAs(t, s.SwitchToForm(), &serr)
}

func TestCommitFromFormView(t *testing.T) {
	s := Edit(sampleAgent(), 1, 4)
	form := s.Form()
	form.Objective = "updated objective"
	require.NoError(t, s.SetForm(form))

	entity, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, "updated objective", entity.Objective)
	assert.Equal(t, 3, entity.AgentNumber)
	assert.True(t, s.Closed())
}

func TestCommitRecoversDroppedSequenceNumber(t *testing.T) {
	s := Edit(sampleAgent(), 1, 4)
	require.NoError(t, s.SwitchToText())
	// Text omits agentNumber entirely.
	require.NoError(t, s.SetText("name: Invoice Triage\nobjective: same agent, renumber-free\n"))

	entity, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, 3, entity.AgentNumber, "prior sequence number must survive a text round trip that omits it")
}

func TestCommitAssignsNumberForNewEntity(t *testing.T) {
	s := Create(&models.DocumentAgent{Name: "Fresh"}, 7)
	entity, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, 8, entity.AgentNumber)
}

func TestCommitFromTextValidates(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	require.NoError(t, s.SwitchToText())
	require.NoError(t, s.SetText("objective: nameless\n"))

	_, err := s.Commit()
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	// A failed commit leaves the session open.
	assert.False(t, s.Closed())
}

func TestClosedSessionRefusesOperations(t *testing.T) {
	s := Create(&models.DocumentAgent{Name: "One Shot"}, 0)
	_, err := s.Commit()
	require.NoError(t, err)

	assert.True(t, errors.Is(s.SwitchToText(), ErrClosed))
	_, err = s.Commit()
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestViewSpecificSetters(t *testing.T) {
	s := Edit(sampleAgent(), 0, 1)
	assert.True(t, errors.Is(s.SetText("nope"), ErrWrongView))

	require.NoError(t, s.SwitchToText())
	assert.True(t, errors.Is(s.SetForm(sampleAgent()), ErrWrongView))
}

func TestGroupSession(t *testing.T) {
	g := &models.DocumentGroup{
		GroupName:   "Ops",
		GroupNumber: 1,
		Agents:      []models.DocumentAgent{{Name: "A"}},
	}
	s := Edit(g, 1, 3)
	require.NoError(t, s.SwitchToText())
	assert.Contains(t, s.Text(), "groupName: Ops")

	require.NoError(t, s.SetText("groupName: Operations\n"))
	entity, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, "Operations", entity.GroupName)
	assert.Equal(t, 1, entity.GroupNumber)
}

func TestMergeInto(t *testing.T) {
	base := []models.DocumentAgent{{Name: "A"}, {Name: "B"}}

	appended := MergeInto(base, models.DocumentAgent{Name: "C"}, -1)
	assert.Len(t, appended, 3)
	assert.Len(t, base, 2)

	replaced := MergeInto(base, models.DocumentAgent{Name: "B2"}, 1)
	assert.Equal(t, "B2", replaced[1].Name)
	assert.Equal(t, "B", base[1].Name)
}
