package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/db"
	"github.com/okan/urcp/internal/pkg/apperrors"
)

// ProjectRepository handles database operations for the project aggregate.
// The aggregate is loaded and saved as a unit; concurrent saves follow
// last-write-wins.
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectFilter carries the listing filters
type ProjectFilter struct {
	Status     string
	Department string
	MentorID   int64
	Tag        string
	Search     string
	Page       int
	PageSize   int
}

var projectColumns = []string{
	"p.id", "p.title", "p.description", "p.department", "p.status",
	"p.progress_percentage", "p.initiator_id", "p.mentor_id", "p.tags",
	"p.created_at", "p.updated_at",
}

// Create inserts a new project aggregate and returns its ID
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) (int64, error) {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := squirrel.Insert("projects").
			Columns("title", "description", "department", "status", "progress_percentage",
				"initiator_id", "mentor_id", "tags", "created_at", "updated_at").
			Values(project.Title, project.Description, project.Department, project.Status,
				project.ProgressPercentage, project.InitiatorID, project.MentorID, project.Tags,
				project.CreatedAt, project.UpdatedAt).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&project.ID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		return r.saveChildren(ctx, tx, project)
	})
	if err != nil {
		return 0, err
	}
	return project.ID, nil
}

// GetAggregate loads the full project aggregate, or nil if no such project
// exists. Nested participants, comments and replies carry their user records.
func (r *ProjectRepository) GetAggregate(ctx context.Context, id int64) (*models.Project, error) {
	query := squirrel.Select(projectColumns...).
		From("projects p").
		Where("p.id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var project models.Project
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Department,
		&project.Status,
		&project.ProgressPercentage,
		&project.InitiatorID,
		&project.MentorID,
		&project.Tags,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	if err := r.loadOpenRoles(ctx, &project); err != nil {
		return nil, err
	}
	if err := r.loadParticipants(ctx, &project); err != nil {
		return nil, err
	}
	if err := r.loadComments(ctx, &project); err != nil {
		return nil, err
	}
	if err := r.loadAttachments(ctx, &project); err != nil {
		return nil, err
	}

	project.Initiator, err = r.loadUserSummary(ctx, project.InitiatorID)
	if err != nil {
		return nil, err
	}
	if project.MentorID != nil {
		project.Mentor, err = r.loadUserSummary(ctx, *project.MentorID)
		if err != nil {
			return nil, err
		}
	}

	return &project, nil
}

// SaveAggregate persists every change made to a loaded aggregate in a single
// transaction. Open roles are replaced wholesale; participants, comments,
// replies and attachments are inserted when new (ID zero) and updated
// otherwise, so existing IDs stay stable for clients.
func (r *ProjectRepository) SaveAggregate(ctx context.Context, project *models.Project) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := squirrel.Update("projects").
			Set("title", project.Title).
			Set("description", project.Description).
			Set("department", project.Department).
			Set("status", project.Status).
			Set("progress_percentage", project.ProgressPercentage).
			Set("mentor_id", project.MentorID).
			Set("tags", project.Tags).
			Set("updated_at", project.UpdatedAt).
			Where("id = ?", project.ID).
			PlaceholderFormat(squirrel.Dollar)

		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}

		result, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("project %d no longer exists", project.ID)
		}

		delQuery := squirrel.Delete("project_open_roles").
			Where("project_id = ?", project.ID).
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err = delQuery.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}

		return r.saveChildren(ctx, tx, project)
	})
}

// Delete removes a project and its children
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("projects").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}
	return nil
}

// DeleteAttachment removes a single attachment row
func (r *ProjectRepository) DeleteAttachment(ctx context.Context, projectID, attachmentID int64) error {
	query := squirrel.Delete("project_attachments").
		Where("id = ? AND project_id = ?", attachmentID, projectID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// saveChildren writes the nested entities of the aggregate. Open roles must
// already have been cleared for existing projects.
func (r *ProjectRepository) saveChildren(ctx context.Context, tx pgx.Tx, project *models.Project) error {
	for i := range project.OpenRoles {
		role := &project.OpenRoles[i]
		query := squirrel.Insert("project_open_roles").
			Columns("project_id", "position", "title", "description").
			Values(project.ID, i, role.Title, role.Description).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&role.ID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	for i := range project.Participants {
		pt := &project.Participants[i]
		if pt.ID == 0 {
			query := squirrel.Insert("project_participants").
				Columns("project_id", "user_id", "role", "status", "created_at").
				Values(project.ID, pt.UserID, pt.Role, pt.Status, pt.CreatedAt).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar)
			sql, args, err := query.ToSql()
			if err != nil {
				return fmt.Errorf("error building SQL: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&pt.ID); err != nil {
				return fmt.Errorf("error executing query: %w", err)
			}
			continue
		}
		query := squirrel.Update("project_participants").
			Set("role", pt.Role).
			Set("status", pt.Status).
			Where("id = ?", pt.ID).
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	for i := range project.Comments {
		comment := &project.Comments[i]
		if comment.ID == 0 {
			query := squirrel.Insert("project_comments").
				Columns("project_id", "user_id", "text", "created_at").
				Values(project.ID, comment.UserID, comment.Text, comment.CreatedAt).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar)
			sql, args, err := query.ToSql()
			if err != nil {
				return fmt.Errorf("error building SQL: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&comment.ID); err != nil {
				return fmt.Errorf("error executing query: %w", err)
			}
		}
		for j := range comment.Replies {
			reply := &comment.Replies[j]
			if reply.ID != 0 {
				continue
			}
			query := squirrel.Insert("project_comment_replies").
				Columns("comment_id", "user_id", "text", "created_at").
				Values(comment.ID, reply.UserID, reply.Text, reply.CreatedAt).
				Suffix("RETURNING id").
				PlaceholderFormat(squirrel.Dollar)
			sql, args, err := query.ToSql()
			if err != nil {
				return fmt.Errorf("error building SQL: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&reply.ID); err != nil {
				return fmt.Errorf("error executing query: %w", err)
			}
		}
	}

	for i := range project.Attachments {
		att := &project.Attachments[i]
		if att.ID != 0 {
			continue
		}
		query := squirrel.Insert("project_attachments").
			Columns("project_id", "title", "file_url", "file_key", "uploaded_by", "uploaded_at").
			Values(project.ID, att.Title, att.FileURL, att.FileKey, att.UploadedByID, att.UploadedAt).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar)
		sql, args, err := query.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&att.ID); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	return nil
}

func (r *ProjectRepository) loadOpenRoles(ctx context.Context, project *models.Project) error {
	query := squirrel.Select("id", "title", "description").
		From("project_open_roles").
		Where("project_id = ?", project.ID).
		OrderBy("position").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	project.OpenRoles = []models.OpenRole{}
	for rows.Next() {
		var role models.OpenRole
		if err := rows.Scan(&role.ID, &role.Title, &role.Description); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		project.OpenRoles = append(project.OpenRoles, role)
	}
	return rows.Err()
}

func (r *ProjectRepository) loadParticipants(ctx context.Context, project *models.Project) error {
	query := squirrel.Select(
		"pp.id", "pp.user_id", "pp.role", "pp.status", "pp.created_at",
		"u.name", "u.role", "u.department", "u.profile_photo_url").
		From("project_participants pp").
		Join("users u ON u.id = pp.user_id").
		Where("pp.project_id = ?", project.ID).
		OrderBy("pp.id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	project.Participants = []models.Participant{}
	for rows.Next() {
		var pt models.Participant
		var user models.User
		err := rows.Scan(
			&pt.ID, &pt.UserID, &pt.Role, &pt.Status, &pt.CreatedAt,
			&user.Name, &user.Role, &user.Department, &user.ProfilePhotoURL,
		)
		if err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		user.ID = pt.UserID
		pt.User = &user
		project.Participants = append(project.Participants, pt)
	}
	return rows.Err()
}

func (r *ProjectRepository) loadComments(ctx context.Context, project *models.Project) error {
	query := squirrel.Select(
		"c.id", "c.user_id", "c.text", "c.created_at",
		"u.name", "u.role", "u.department", "u.profile_photo_url").
		From("project_comments c").
		Join("users u ON u.id = c.user_id").
		Where("c.project_id = ?", project.ID).
		OrderBy("c.created_at", "c.id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	project.Comments = []models.Comment{}
	byID := make(map[int64]int)
	for rows.Next() {
		var comment models.Comment
		var user models.User
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.Text, &comment.CreatedAt,
			&user.Name, &user.Role, &user.Department, &user.ProfilePhotoURL,
		)
		if err != nil {
			rows.Close()
			return fmt.Errorf("error scanning row: %w", err)
		}
		user.ID = comment.UserID
		comment.User = &user
		comment.Replies = []models.Reply{}
		byID[comment.ID] = len(project.Comments)
		project.Comments = append(project.Comments, comment)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	if len(project.Comments) == 0 {
		return nil
	}

	replyQuery := squirrel.Select(
		"rp.id", "rp.comment_id", "rp.user_id", "rp.text", "rp.created_at",
		"u.name", "u.role", "u.department", "u.profile_photo_url").
		From("project_comment_replies rp").
		Join("users u ON u.id = rp.user_id").
		Join("project_comments c ON c.id = rp.comment_id").
		Where("c.project_id = ?", project.ID).
		OrderBy("rp.created_at", "rp.id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err = replyQuery.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	replyRows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var reply models.Reply
		var commentID int64
		var user models.User
		err := replyRows.Scan(
			&reply.ID, &commentID, &reply.UserID, &reply.Text, &reply.CreatedAt,
			&user.Name, &user.Role, &user.Department, &user.ProfilePhotoURL,
		)
		if err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		user.ID = reply.UserID
		reply.User = &user
		if idx, ok := byID[commentID]; ok {
			project.Comments[idx].Replies = append(project.Comments[idx].Replies, reply)
		}
	}
	return replyRows.Err()
}

func (r *ProjectRepository) loadAttachments(ctx context.Context, project *models.Project) error {
	query := squirrel.Select("id", "title", "file_url", "file_key", "uploaded_by", "uploaded_at").
		From("project_attachments").
		Where("project_id = ?", project.ID).
		OrderBy("uploaded_at", "id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	project.Attachments = []models.Attachment{}
	for rows.Next() {
		var att models.Attachment
		err := rows.Scan(&att.ID, &att.Title, &att.FileURL, &att.FileKey, &att.UploadedByID, &att.UploadedAt)
		if err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		project.Attachments = append(project.Attachments, att)
	}
	return rows.Err()
}

func (r *ProjectRepository) loadUserSummary(ctx context.Context, userID int64) (*models.User, error) {
	query := squirrel.Select("id", "name", "role", "department", "profile_photo_url").
		From("users").
		Where("id = ?", userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.ID, &user.Name, &user.Role, &user.Department, &user.ProfilePhotoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &user, nil
}

// GetAll retrieves projects with filtering and pagination. List rows are
// shallow: nested entities are not loaded, only the initiator summary.
func (r *ProjectRepository) GetAll(ctx context.Context, filter ProjectFilter) ([]*models.Project, int64, error) {
	query := r.listQuery()

	if filter.Status != "" {
		query = query.Where("p.status = ?", filter.Status)
	}
	if filter.Department != "" {
		query = query.Where("p.department = ?", filter.Department)
	}
	if filter.MentorID != 0 {
		query = query.Where("p.mentor_id = ?", filter.MentorID)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(p.tags)", filter.Tag)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("(p.title ILIKE ? OR p.description ILIKE ?)", pattern, pattern)
	}

	return r.runListQuery(ctx, query, filter.Page, filter.PageSize)
}

// GetByMember retrieves projects the user initiated, mentors or participates
// in with an accepted role.
func (r *ProjectRepository) GetByMember(ctx context.Context, userID int64, page, pageSize int) ([]*models.Project, int64, error) {
	query := r.listQuery().
		Where(`(p.initiator_id = ? OR p.mentor_id = ? OR EXISTS (
			SELECT 1 FROM project_participants pp
			WHERE pp.project_id = p.id AND pp.user_id = ? AND pp.status = 'accepted'
		))`, userID, userID, userID)

	return r.runListQuery(ctx, query, page, pageSize)
}

// GetPending retrieves proposed projects awaiting a mentor. A proposed
// project that still has a mentor assigned is not pending: nobody could
// approve it.
func (r *ProjectRepository) GetPending(ctx context.Context, page, pageSize int) ([]*models.Project, int64, error) {
	query := r.listQuery().
		Where("p.status = ?", models.StatusProposed).
		Where("p.mentor_id IS NULL")
	return r.runListQuery(ctx, query, page, pageSize)
}

func (r *ProjectRepository) listQuery() squirrel.SelectBuilder {
	return squirrel.Select(projectColumns...).
		Columns("u.name", "u.role", "u.department", "u.profile_photo_url").
		Column("COUNT(*) OVER()").
		From("projects p").
		Join("users u ON u.id = p.initiator_id").
		PlaceholderFormat(squirrel.Dollar)
}

func (r *ProjectRepository) runListQuery(ctx context.Context, query squirrel.SelectBuilder, page, pageSize int) ([]*models.Project, int64, error) {
	offset := (page - 1) * pageSize
	query = query.OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(pageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	var total int64
	for rows.Next() {
		var project models.Project
		var initiator models.User
		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.Department,
			&project.Status,
			&project.ProgressPercentage,
			&project.InitiatorID,
			&project.MentorID,
			&project.Tags,
			&project.CreatedAt,
			&project.UpdatedAt,
			&initiator.Name,
			&initiator.Role,
			&initiator.Department,
			&initiator.ProfilePhotoURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		if project.Tags == nil {
			project.Tags = []string{}
		}
		initiator.ID = project.InitiatorID
		project.Initiator = &initiator
		projects = append(projects, &project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return projects, total, nil
}
