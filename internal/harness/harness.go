package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erdilatifi/User-Management-App/internal/directory"
	"github.com/erdilatifi/User-Management-App/internal/query"
	"github.com/erdilatifi/User-Management-App/internal/record"
	"github.com/erdilatifi/User-Management-App/internal/session"
	"github.com/erdilatifi/User-Management-App/internal/store"
	"github.com/erdilatifi/User-Management-App/internal/telemetry"
	"github.com/erdilatifi/User-Management-App/internal/testutil"
)

// lastRef stands for the id of the most recently added record.
const lastRef = "$last"

// Harness executes one scenario against a real session.
type Harness struct {
	session *session.Session
	logger  *slog.Logger
	lastID  int64
}

// fixtureFetcher serves a DirectoryFixture through the listing decoder, so
// scenario users are held to the same rules as a real response.
type fixtureFetcher struct {
	fixture DirectoryFixture
}

func (f fixtureFetcher) FetchUsers(context.Context) ([]record.Record, error) {
	if f.fixture.Fail != "" {
		return nil, &directory.FetchError{Op: "list", URL: "fixture", Err: errors.New(f.fixture.Fail)}
	}
	users := f.fixture.Users
	if users == nil {
		users = []map[string]any{}
	}
	body, err := json.Marshal(users)
	if err != nil {
		return nil, &directory.FetchError{Op: "list", URL: "fixture", Err: err}
	}
	records, err := directory.DecodeUsers(body)
	if err != nil {
		return nil, &directory.FetchError{Op: "list", URL: "fixture", Err: err}
	}
	return records, nil
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a FakeClock, so
// Local ids and ordering are identical across runs.
//
// Execution flow:
//  1. Create an in-memory slot and seed it with the scenario snapshot
//  2. Load the store and build a session over the fixture directory
//  3. Execute flow steps, checking expect clauses
//  4. Evaluate assertions against the trace and final state
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	slot, err := store.OpenSQLite(":memory:", store.DefaultSlotName)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory slot: %w", err)
	}
	defer slot.Close()

	if scenario.Snapshot != "" {
		if err := slot.Save(ctx, []byte(scenario.Snapshot)); err != nil {
			return nil, fmt.Errorf("failed to seed snapshot: %w", err)
		}
	}

	logger := telemetry.DiscardLogger()
	st := store.New(slot, store.WithClock(testutil.NewFakeClock()), store.WithLogger(logger))
	st.Load(ctx)

	h := &Harness{
		session: session.New(st, fixtureFetcher{fixture: scenario.Directory},
			session.WithPageSize(scenario.PageSize),
			session.WithLogger(logger),
		),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		outcome, reason, stepResult, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d (%s): %w", i, step.Op, err)
		}
		result.AddTrace(step.Op, step.Args, outcome, stepResult)
		h.logger.Debug("flow step completed", "step", i, "op", step.Op, "outcome", outcome)

		if step.Expect != nil {
			if step.Expect.Outcome != outcome {
				result.AddError(fmt.Sprintf("flow step %d (%s): expected outcome %q, got %q", i, step.Op, step.Expect.Outcome, outcome))
			} else if step.Expect.Reason != "" && step.Expect.Reason != reason {
				result.AddError(fmt.Sprintf("flow step %d (%s): expected reason %q, got %q", i, step.Op, step.Expect.Reason, reason))
			}
		}
	}

	result.Final = viewSnapshot(h.session.View(), string(h.session.EmptyState()))
	result.StoreCount = st.Len()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step. The returned error is a malformed step, not an
// operation outcome; outcomes such as invalid input are reported in-band.
func (h *Harness) execute(ctx context.Context, step FlowStep) (string, string, any, error) {
	s := h.session

	switch step.Op {
	case OpHydrate:
		res, err := s.Hydrate(ctx)
		if err != nil && !errors.Is(err, directory.ErrFetch) {
			return "", "", nil, err
		}
		return string(res.Outcome), "", map[string]any{"records": res.Records}, nil

	case OpAdd:
		r, err := s.AddUser(ctx, argString(step.Args, "name"), argString(step.Args, "email"), argString(step.Args, "organization"))
		if err != nil {
			return invalidOutcome(err)
		}
		h.lastID = r.ID
		return OutcomeOK, "", itemSnapshot(r), nil

	case OpUpdate:
		id, err := h.argID(step.Args)
		if err != nil {
			return "", "", nil, err
		}
		r, ok, err := s.UpdateUser(ctx, id, patchFromArgs(step.Args))
		if err != nil {
			return invalidOutcome(err)
		}
		if !ok {
			return OutcomeNotFound, "", nil, nil
		}
		return OutcomeOK, "", itemSnapshot(r), nil

	case OpDelete:
		id, err := h.argID(step.Args)
		if err != nil {
			return "", "", nil, err
		}
		if !s.DeleteUser(ctx, id) {
			return OutcomeNotFound, "", nil, nil
		}
		return OutcomeOK, "", nil, nil

	case OpSearch:
		s.Search(argString(step.Args, "text"))
		return OutcomeOK, "", nil, nil

	case OpSort:
		by, err := query.ParseSortKey(argString(step.Args, "by"))
		if err != nil {
			return "", "", nil, err
		}
		order, err := query.ParseSortOrder(argString(step.Args, "order"))
		if err != nil {
			return "", "", nil, err
		}
		s.SetSort(by, order)
		return OutcomeOK, "", nil, nil

	case OpPage:
		n, err := argInt(step.Args, "n")
		if err != nil {
			return "", "", nil, err
		}
		return OutcomeOK, "", map[string]any{"page": s.GoToPage(int(n))}, nil

	case OpWhere:
		source := argString(step.Args, "expr")
		if source == "" {
			s.SetWhere(nil)
			return OutcomeOK, "", nil, nil
		}
		p, err := query.CompileWhere(source)
		if err != nil {
			return OutcomeInvalid, "", nil, nil
		}
		s.SetWhere(p)
		return OutcomeOK, "", nil, nil

	case OpView:
		return OutcomeOK, "", viewSnapshot(s.View(), string(s.EmptyState())), nil

	default:
		return "", "", nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func invalidOutcome(err error) (string, string, any, error) {
	var verr *record.ValidationError
	if !errors.As(err, &verr) {
		return "", "", nil, err
	}
	return OutcomeInvalid, string(verr.Reason), map[string]any{"message": verr.Message()}, nil
}

func (h *Harness) argID(args map[string]any) (int64, error) {
	if s, ok := args["id"].(string); ok && s == lastRef {
		if h.lastID == 0 {
			return 0, fmt.Errorf("id %q used before any add", lastRef)
		}
		return h.lastID, nil
	}
	return argInt(args, "id")
}

func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// argInt reads an integer argument. YAML decodes plain numbers as int.
func argInt(args map[string]any, key string) (int64, error) {
	switch v := args[key].(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
		return 0, fmt.Errorf("argument %q: %v is not an integer", key, v)
	case nil:
		return 0, fmt.Errorf("argument %q is required", key)
	default:
		return 0, fmt.Errorf("argument %q: unsupported type %T", key, v)
	}
}

func patchFromArgs(args map[string]any) record.Patch {
	var p record.Patch
	for key, dst := range map[string]**string{
		"name":         &p.Name,
		"email":        &p.Email,
		"organization": &p.Organization,
	} {
		if _, ok := args[key]; ok {
			v := argString(args, key)
			*dst = &v
		}
	}
	return p
}
