package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/interfaces"
	"github.com/secmon-lab/riskpilot/pkg/domain/model"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type projectRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newProjectRepository(client *firestore.Client) *projectRepository {
	return &projectRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *projectRepository) projectsCollection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, "projects"))
}

func (r *projectRepository) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	created := model.CopyProject(p)
	if created.ID == "" {
		created.ID = types.NewProjectID()
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	for _, risk := range created.Risks {
		risk.ProjectID = created.ID
	}

	docRef := r.projectsCollection().Doc(created.ID.String())
	if _, err := docRef.Create(ctx, fromProject(created)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "project already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create project", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	snap, err := r.projectsCollection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get project", goerr.V("id", id))
	}

	var doc projectDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode project", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

// ListByUser merges two queries: projects owned by the user (ordered by the
// owner_id/updated_at composite index, see the migrate command) and projects
// whose member_emails contain the user's email.
func (r *projectRepository) ListByUser(ctx context.Context, userID types.UserID, email string) ([]*model.Project, error) {
	found := make(map[types.ProjectID]*model.Project)

	if userID != "" {
		q := r.projectsCollection().
			Where("owner_id", "==", userID.String()).
			OrderBy("updated_at", firestore.Desc)
		if err := r.collect(ctx, q, found); err != nil {
			return nil, goerr.Wrap(err, "failed to list owned projects", goerr.V("user_id", userID))
		}
	}

	if email = model.NormalizeEmail(email); email != "" {
		q := r.projectsCollection().Where("member_emails", "array-contains", email)
		if err := r.collect(ctx, q, found); err != nil {
			return nil, goerr.Wrap(err, "failed to list member projects", goerr.V("email", email))
		}
	}

	projects := make([]*model.Project, 0, len(found))
	for _, p := range found {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})

	return projects, nil
}

func (r *projectRepository) collect(ctx context.Context, q firestore.Query, found map[types.ProjectID]*model.Project) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate projects")
		}

		var doc projectDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode project", goerr.V("doc_id", snap.Ref.ID))
		}
		p := doc.toModel()
		found[p.ID] = p
	}
}

func (r *projectRepository) Mutate(ctx context.Context, id types.ProjectID, fn interfaces.ProjectMutator) (*model.Project, error) {
	docRef := r.projectsCollection().Doc(id.String())

	var result *model.Project
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get project", goerr.V("id", id))
		}

		var doc projectDocument
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode project", goerr.V("id", id))
		}

		existing := doc.toModel()
		working := model.CopyProject(existing)
		if err := fn(working); err != nil {
			return err
		}

		working.ID = existing.ID
		working.CreatedAt = existing.CreatedAt
		working.UpdatedAt = time.Now().UTC()
		for _, risk := range working.Risks {
			risk.ProjectID = working.ID
		}

		if err := tx.Set(docRef, fromProject(working)); err != nil {
			return goerr.Wrap(err, "failed to update project", goerr.V("id", id))
		}
		result = working
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *projectRepository) Delete(ctx context.Context, id types.ProjectID) error {
	docRef := r.projectsCollection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check project existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete project", goerr.V("id", id))
	}

	return nil
}
