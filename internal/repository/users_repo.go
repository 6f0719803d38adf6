package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fitosanitario/internal/dao"
	"fitosanitario/internal/domain"

	"go.uber.org/zap"
)

// UserRepository usuario persistence. Users are soft deleted (activo = 0)
// and List only returns active rows.
type UserRepository interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIdentification(ctx context.Context, number string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
	Create(ctx context.Context, u *domain.User) (int64, error)
	Update(ctx context.Context, u *domain.User) error
	SoftDelete(ctx context.Context, id int64) error
}

const userColumns = "u.id_usuario, u.numero_identificacion, u.rol, u.nombre, u.apellidos, u.telefono_contacto, u.correo_electronico, u.activo"

// scanUser scans userColumns after any leading destinations
func scanUser(row dao.Row, u *domain.User, lead ...any) error {
	var lastName, phone, email sql.NullString
	dest := append(lead, &u.ID, &u.IdentificationNumber, &u.Role, &u.Name, &lastName, &phone, &email, &u.Active)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	u.LastName = lastName.String
	u.Phone = phone.String
	u.Email = email.String
	return nil
}

type SQLUserRepository struct {
	tpl *dao.Template[domain.User]
}

func NewSQLUserRepository(s *Store) *SQLUserRepository {
	return &SQLUserRepository{tpl: newTemplate(s, func(row dao.Row) (domain.User, error) {
		var u domain.User
		err := scanUser(row, &u)
		return u, err
	})}
}

var _ UserRepository = (*SQLUserRepository)(nil)

func (r *SQLUserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+userColumns+" FROM usuario u WHERE u.id_usuario = ?", dao.Long(id))
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+userColumns+" FROM usuario u WHERE u.correo_electronico = ?", dao.String(email))
}

func (r *SQLUserRepository) GetByIdentification(ctx context.Context, number string) (*domain.User, error) {
	return r.tpl.FetchOne(ctx, "SELECT "+userColumns+" FROM usuario u WHERE u.numero_identificacion = ?", dao.String(number))
}

func (r *SQLUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.tpl.FetchMany(ctx, "SELECT "+userColumns+" FROM usuario u WHERE u.activo = ? ORDER BY u.id_usuario", dao.Bool(true))
}

func (r *SQLUserRepository) ListByRole(ctx context.Context, role string) ([]domain.User, error) {
	return r.tpl.FetchMany(ctx,
		"SELECT "+userColumns+" FROM usuario u WHERE u.rol = ? AND u.activo = ? ORDER BY u.id_usuario",
		dao.String(role), dao.Bool(true))
}

func (r *SQLUserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.tpl.ExecuteReturningID(ctx,
		`INSERT INTO usuario (numero_identificacion, rol, nombre, apellidos, telefono_contacto, correo_electronico, activo)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"id_usuario",
		dao.String(u.IdentificationNumber), dao.String(u.Role), dao.String(u.Name), dao.String(u.LastName),
		dao.String(u.Phone), dao.String(u.Email), dao.Bool(true))
}

func (r *SQLUserRepository) Update(ctx context.Context, u *domain.User) error {
	n, err := r.tpl.Execute(ctx,
		`UPDATE usuario SET numero_identificacion = ?, nombre = ?, apellidos = ?, telefono_contacto = ?, correo_electronico = ?
		 WHERE id_usuario = ?`,
		dao.String(u.IdentificationNumber), dao.String(u.Name), dao.String(u.LastName),
		dao.String(u.Phone), dao.String(u.Email), dao.Long(u.ID))
	return expectOne(n, err, "usuario", u.ID)
}

func (r *SQLUserRepository) SoftDelete(ctx context.Context, id int64) error {
	n, err := r.tpl.Execute(ctx, "UPDATE usuario SET activo = ? WHERE id_usuario = ?", dao.Bool(false), dao.Long(id))
	return expectOne(n, err, "usuario", id)
}

// hardDelete compensates a failed role insert
func (r *SQLUserRepository) hardDelete(ctx context.Context, id int64) error {
	_, err := r.tpl.Execute(ctx, "DELETE FROM usuario WHERE id_usuario = ?", dao.Long(id))
	return err
}

// roleLink inserts the usuario row and then the role row. Statements run
// in autocommit mode, so a failed role insert removes the usuario row again.
type roleLink struct {
	users  *SQLUserRepository
	logger *zap.Logger
}

func (l roleLink) create(ctx context.Context, u *domain.User, role string, insertRole func(userID int64) (int64, error)) (int64, error) {
	user := *u
	user.Role = role
	userID, err := l.users.Create(ctx, &user)
	if err != nil {
		return 0, err
	}
	id, err := insertRole(userID)
	if err != nil {
		if cerr := l.users.hardDelete(ctx, userID); cerr != nil {
			l.logger.Error("Failed to remove orphan usuario row", zap.Int64("id_usuario", userID), zap.Error(cerr))
		}
		return 0, err
	}
	u.ID = userID
	u.Role = role
	return id, nil
}

// ProducerRepository productor persistence, soft delete
type ProducerRepository interface {
	Get(ctx context.Context, id int64) (*domain.Producer, error)
	GetByIdentification(ctx context.Context, number string) (*domain.Producer, error)
	List(ctx context.Context) ([]domain.Producer, error)
	Create(ctx context.Context, p *domain.Producer) (int64, error)
	Update(ctx context.Context, p *domain.Producer) error
	SoftDelete(ctx context.Context, id int64) error
}

// OwnerRepository propietario persistence, soft delete
type OwnerRepository interface {
	Get(ctx context.Context, id int64) (*domain.Owner, error)
	GetByIdentification(ctx context.Context, number string) (*domain.Owner, error)
	List(ctx context.Context) ([]domain.Owner, error)
	Create(ctx context.Context, o *domain.Owner) (int64, error)
	Update(ctx context.Context, o *domain.Owner) error
	SoftDelete(ctx context.Context, id int64) error
}

// TechnicalAssistantRepository asistente_tecnico persistence, soft delete
type TechnicalAssistantRepository interface {
	Get(ctx context.Context, id int64) (*domain.TechnicalAssistant, error)
	GetByIdentification(ctx context.Context, number string) (*domain.TechnicalAssistant, error)
	List(ctx context.Context) ([]domain.TechnicalAssistant, error)
	Create(ctx context.Context, a *domain.TechnicalAssistant) (int64, error)
	Update(ctx context.Context, a *domain.TechnicalAssistant) error
	SoftDelete(ctx context.Context, id int64) error
}

// --- productor ---

type SQLProducerRepository struct {
	tpl  *dao.Template[domain.Producer]
	link roleLink
}

func NewSQLProducerRepository(s *Store, logger *zap.Logger) *SQLProducerRepository {
	return &SQLProducerRepository{
		tpl: newTemplate(s, func(row dao.Row) (domain.Producer, error) {
			var p domain.Producer
			err := scanUser(row, &p.User, &p.ID, &p.Active)
			return p, err
		}),
		link: roleLink{users: NewSQLUserRepository(s), logger: logger},
	}
}

var _ ProducerRepository = (*SQLProducerRepository)(nil)

const producerSelect = "SELECT p.id_productor, p.activo, " + userColumns + " FROM productor p JOIN usuario u ON u.id_usuario = p.id_usuario"

func (r *SQLProducerRepository) Get(ctx context.Context, id int64) (*domain.Producer, error) {
	return r.tpl.FetchOne(ctx, producerSelect+" WHERE p.id_productor = ?", dao.Long(id))
}

func (r *SQLProducerRepository) GetByIdentification(ctx context.Context, number string) (*domain.Producer, error) {
	return r.tpl.FetchOne(ctx, producerSelect+" WHERE u.numero_identificacion = ?", dao.String(number))
}

func (r *SQLProducerRepository) List(ctx context.Context) ([]domain.Producer, error) {
	return r.tpl.FetchMany(ctx, producerSelect+" WHERE p.activo = ? ORDER BY p.id_productor", dao.Bool(true))
}

func (r *SQLProducerRepository) Create(ctx context.Context, p *domain.Producer) (int64, error) {
	return r.link.create(ctx, &p.User, domain.RoleProducer, func(userID int64) (int64, error) {
		return r.tpl.ExecuteReturningID(ctx, "INSERT INTO productor (id_usuario, activo) VALUES (?, ?)", "id_productor",
			dao.Long(userID), dao.Bool(true))
	})
}

func (r *SQLProducerRepository) Update(ctx context.Context, p *domain.Producer) error {
	return updateLinkedUser(ctx, r.link.users, &p.User, "productor", "id_productor", p.ID)
}

func (r *SQLProducerRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDeleteLinked(ctx, r.tpl, "productor", "id_productor", id)
}

// --- propietario ---

type SQLOwnerRepository struct {
	tpl  *dao.Template[domain.Owner]
	link roleLink
}

func NewSQLOwnerRepository(s *Store, logger *zap.Logger) *SQLOwnerRepository {
	return &SQLOwnerRepository{
		tpl: newTemplate(s, func(row dao.Row) (domain.Owner, error) {
			var o domain.Owner
			err := scanUser(row, &o.User, &o.ID, &o.Active)
			return o, err
		}),
		link: roleLink{users: NewSQLUserRepository(s), logger: logger},
	}
}

var _ OwnerRepository = (*SQLOwnerRepository)(nil)

const ownerSelect = "SELECT o.id_propietario, o.activo, " + userColumns + " FROM propietario o JOIN usuario u ON u.id_usuario = o.id_usuario"

func (r *SQLOwnerRepository) Get(ctx context.Context, id int64) (*domain.Owner, error) {
	return r.tpl.FetchOne(ctx, ownerSelect+" WHERE o.id_propietario = ?", dao.Long(id))
}

func (r *SQLOwnerRepository) GetByIdentification(ctx context.Context, number string) (*domain.Owner, error) {
	return r.tpl.FetchOne(ctx, ownerSelect+" WHERE u.numero_identificacion = ?", dao.String(number))
}

func (r *SQLOwnerRepository) List(ctx context.Context) ([]domain.Owner, error) {
	return r.tpl.FetchMany(ctx, ownerSelect+" WHERE o.activo = ? ORDER BY o.id_propietario", dao.Bool(true))
}

func (r *SQLOwnerRepository) Create(ctx context.Context, o *domain.Owner) (int64, error) {
	return r.link.create(ctx, &o.User, domain.RoleOwner, func(userID int64) (int64, error) {
		return r.tpl.ExecuteReturningID(ctx, "INSERT INTO propietario (id_usuario, activo) VALUES (?, ?)", "id_propietario",
			dao.Long(userID), dao.Bool(true))
	})
}

func (r *SQLOwnerRepository) Update(ctx context.Context, o *domain.Owner) error {
	return updateLinkedUser(ctx, r.link.users, &o.User, "propietario", "id_propietario", o.ID)
}

func (r *SQLOwnerRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDeleteLinked(ctx, r.tpl, "propietario", "id_propietario", id)
}

// --- asistente_tecnico ---

type SQLTechnicalAssistantRepository struct {
	tpl  *dao.Template[domain.TechnicalAssistant]
	link roleLink
}

func NewSQLTechnicalAssistantRepository(s *Store, logger *zap.Logger) *SQLTechnicalAssistantRepository {
	return &SQLTechnicalAssistantRepository{
		tpl: newTemplate(s, func(row dao.Row) (domain.TechnicalAssistant, error) {
			var a domain.TechnicalAssistant
			var card, specialty sql.NullString
			err := scanUser(row, &a.User, &a.ID, &a.Active, &card, &specialty)
			a.ProfessionalCardNumber = card.String
			a.Specialty = specialty.String
			return a, err
		}),
		link: roleLink{users: NewSQLUserRepository(s), logger: logger},
	}
}

var _ TechnicalAssistantRepository = (*SQLTechnicalAssistantRepository)(nil)

const assistantSelect = "SELECT a.id_asistente_tecnico, a.activo, a.numero_tarjeta_profesional, a.especialidad, " + userColumns +
	" FROM asistente_tecnico a JOIN usuario u ON u.id_usuario = a.id_usuario"

func (r *SQLTechnicalAssistantRepository) Get(ctx context.Context, id int64) (*domain.TechnicalAssistant, error) {
	return r.tpl.FetchOne(ctx, assistantSelect+" WHERE a.id_asistente_tecnico = ?", dao.Long(id))
}

func (r *SQLTechnicalAssistantRepository) GetByIdentification(ctx context.Context, number string) (*domain.TechnicalAssistant, error) {
	return r.tpl.FetchOne(ctx, assistantSelect+" WHERE u.numero_identificacion = ?", dao.String(number))
}

func (r *SQLTechnicalAssistantRepository) List(ctx context.Context) ([]domain.TechnicalAssistant, error) {
	return r.tpl.FetchMany(ctx, assistantSelect+" WHERE a.activo = ? ORDER BY a.id_asistente_tecnico", dao.Bool(true))
}

func (r *SQLTechnicalAssistantRepository) Create(ctx context.Context, a *domain.TechnicalAssistant) (int64, error) {
	return r.link.create(ctx, &a.User, domain.RoleAssistant, func(userID int64) (int64, error) {
		return r.tpl.ExecuteReturningID(ctx,
			"INSERT INTO asistente_tecnico (id_usuario, numero_tarjeta_profesional, especialidad, activo) VALUES (?, ?, ?, ?)",
			"id_asistente_tecnico",
			dao.Long(userID), dao.String(a.ProfessionalCardNumber), dao.String(a.Specialty), dao.Bool(true))
	})
}

func (r *SQLTechnicalAssistantRepository) Update(ctx context.Context, a *domain.TechnicalAssistant) error {
	n, err := r.tpl.Execute(ctx,
		"UPDATE asistente_tecnico SET numero_tarjeta_profesional = ?, especialidad = ? WHERE id_asistente_tecnico = ?",
		dao.String(a.ProfessionalCardNumber), dao.String(a.Specialty), dao.Long(a.ID))
	if err := expectOne(n, err, "asistente_tecnico", a.ID); err != nil {
		return err
	}
	return updateLinkedUser(ctx, r.link.users, &a.User, "asistente_tecnico", "id_asistente_tecnico", a.ID)
}

func (r *SQLTechnicalAssistantRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDeleteLinked(ctx, r.tpl, "asistente_tecnico", "id_asistente_tecnico", id)
}

// updateLinkedUser rewrites the usuario row behind a role row
func updateLinkedUser(ctx context.Context, users *SQLUserRepository, u *domain.User, table, key string, id int64) error {
	n, err := users.tpl.Execute(ctx,
		fmt.Sprintf(`UPDATE usuario SET numero_identificacion = ?, nombre = ?, apellidos = ?, telefono_contacto = ?, correo_electronico = ?
		 WHERE id_usuario = (SELECT id_usuario FROM %s WHERE %s = ?)`, table, key),
		dao.String(u.IdentificationNumber), dao.String(u.Name), dao.String(u.LastName),
		dao.String(u.Phone), dao.String(u.Email), dao.Long(id))
	return expectOne(n, err, table, id)
}

// softDeleteLinked deactivates the role row and its usuario row
func softDeleteLinked[T any](ctx context.Context, tpl *dao.Template[T], table, key string, id int64) error {
	n, err := tpl.Execute(ctx, fmt.Sprintf("UPDATE %s SET activo = ? WHERE %s = ?", table, key), dao.Bool(false), dao.Long(id))
	if err := expectOne(n, err, table, id); err != nil {
		return err
	}
	_, err = tpl.Execute(ctx,
		fmt.Sprintf("UPDATE usuario SET activo = ? WHERE id_usuario = (SELECT id_usuario FROM %s WHERE %s = ?)", table, key),
		dao.Bool(false), dao.Long(id))
	return err
}
