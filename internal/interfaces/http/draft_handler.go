package http

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/loyalty-console/internal/application/console"
	"github.com/jhoicas/loyalty-console/internal/application/draft"
	"github.com/jhoicas/loyalty-console/internal/application/dto"
	"github.com/jhoicas/loyalty-console/internal/application/resource"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// maxUploadBytes tamaño máximo de un adjunto.
const maxUploadBytes = 5 << 20

// DraftTarget recurso al que puede enviarse un borrador.
type DraftTarget struct {
	submit   func(ctx context.Context, s *console.Session, h draft.Handle) error
	snapshot func(s *console.Session, id string) (any, bool)
	defaults map[string]any
	own      bool // el registro es siempre el del usuario de la sesión
}

// WithDefaults valores con los que arranca un alta de este recurso.
func (t DraftTarget) WithDefaults(values map[string]any) DraftTarget {
	t.defaults = values
	return t
}

// Own fija el id editado al del usuario de la sesión, sin importar el que envíe el cliente.
func (t DraftTarget) Own() DraftTarget {
	t.own = true
	return t
}

// DraftTargetFor liga un borrador al recurso cfg(sesión). La instantánea para editar
// se toma del último estado cargado en el controlador de la sesión.
func DraftTargetFor[T entity.Identifiable](cfg func(s *console.Session) resource.Config) DraftTarget {
	return DraftTarget{
		submit: func(ctx context.Context, s *console.Session, h draft.Handle) error {
			return console.SubmitDraft(ctx, s, console.Resource[T](s, cfg(s)), h)
		},
		snapshot: func(s *console.Session, id string) (any, bool) {
			for _, it := range console.Resource[T](s, cfg(s)).Snapshot().Items {
				if it.GetID() == id {
					return it, true
				}
			}
			return nil, false
		},
	}
}

// Static recurso fijo del catálogo.
func Static(cfg resource.Config) func(*console.Session) resource.Config {
	return func(*console.Session) resource.Config { return cfg }
}

// OwnMerchant recurso del comercio de la sesión.
func OwnMerchant(cfg func(merchantID string) resource.Config) func(*console.Session) resource.Config {
	return func(s *console.Session) resource.Config { return cfg(s.SubjectID()) }
}

// DraftHandler formularios de alta y edición con adjuntos.
type DraftHandler struct {
	targets map[string]DraftTarget
}

// NewDraftHandler construye el handler con los recursos editables del panel.
func NewDraftHandler(targets map[string]DraftTarget) *DraftHandler {
	return &DraftHandler{targets: targets}
}

// Open POST /drafts {resource, id?, initial?}
func (h *DraftHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenDraftRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	target, ok := h.targets[in.Resource]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "UNKNOWN_RESOURCE", Message: "recurso no editable: " + in.Resource,
		})
	}
	s := GetSession(c)

	if target.own {
		in.ID = s.SubjectID()
	}

	var handle draft.Handle
	if in.ID == "" {
		handle = s.Drafts.OpenCreateWith(target.defaults, in.Initial)
	} else {
		snap, found := target.snapshot(s, in.ID)
		if !found {
			if in.Initial == nil {
				return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
					Code: "NOT_FOUND", Message: "el registro no está en el listado cargado",
				})
			}
			snap = in.Initial
		}
		var err error
		if handle, err = s.Drafts.OpenEdit(in.ID, snap); err != nil {
			return respondError(c, err, false)
		}
	}
	if err := s.Drafts.SetTag(handle, in.Resource); err != nil {
		return respondError(c, err, false)
	}
	return h.respond(c, fiber.StatusCreated, handle)
}

// Get GET /drafts/:handle
func (h *DraftHandler) Get(c *fiber.Ctx) error {
	return h.respond(c, fiber.StatusOK, draft.Handle(c.Params("handle")))
}

// Field PATCH /drafts/:handle {field, value}
func (h *DraftHandler) Field(c *fiber.Ctx) error {
	var in dto.DraftFieldRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	handle := draft.Handle(c.Params("handle"))
	if err := GetSession(c).Drafts.Update(handle, in.Field, in.Value); err != nil {
		return respondError(c, err, false)
	}
	return h.respond(c, fiber.StatusOK, handle)
}

// Attach POST /drafts/:handle/files/:field (multipart, campo "file")
func (h *DraftHandler) Attach(c *fiber.Ctx) error {
	f, err := formFile(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	field := c.Params("field")
	url, err := GetSession(c).Drafts.Attach(draft.Handle(c.Params("handle")), field, f)
	if err != nil {
		return respondError(c, err, false)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PreviewResponse{Field: field, PreviewURL: url})
}

// Discard DELETE /drafts/:handle
func (h *DraftHandler) Discard(c *fiber.Ctx) error {
	GetSession(c).Drafts.Discard(draft.Handle(c.Params("handle")))
	return c.SendStatus(fiber.StatusNoContent)
}

// Submit POST /drafts/:handle/submit. Si la API rechaza, el borrador sigue abierto.
func (h *DraftHandler) Submit(c *fiber.Ctx) error {
	s := GetSession(c)
	handle := draft.Handle(c.Params("handle"))
	d, ok := s.Drafts.Get(handle)
	if !ok {
		return respondError(c, draft.ErrUnknownDraft, false)
	}
	target, ok := h.targets[d.Tag]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "UNKNOWN_RESOURCE", Message: "recurso no editable: " + d.Tag,
		})
	}
	if err := target.submit(c.UserContext(), s, handle); err != nil {
		return respondError(c, err, false)
	}
	return c.JSON(fiber.Map{"success": true, "resource": d.Tag, "mode": d.Mode.String()})
}

func (h *DraftHandler) respond(c *fiber.Ctx, status int, handle draft.Handle) error {
	d, ok := GetSession(c).Drafts.Get(handle)
	if !ok {
		return respondError(c, draft.ErrUnknownDraft, false)
	}
	return c.Status(status).JSON(dto.DraftResponse{
		Handle:   string(d.Handle),
		Mode:     d.Mode.String(),
		Resource: d.Tag,
		TargetID: d.TargetID,
		Values:   d.Values,
		Previews: d.Previews,
	})
}

// PreviewHandler GET /previews/:id sirve el adjunto aún no enviado.
func PreviewHandler(previews *draft.PreviewRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, ok := previews.Lookup(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "vista previa revocada"})
		}
		if f.ContentType != "" {
			c.Set(fiber.HeaderContentType, f.ContentType)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Send(f.Content)
	}
}

// formFile lee el campo "file" del formulario multipart.
func formFile(c *fiber.Ctx) (draft.File, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return draft.File{}, fiber.NewError(fiber.StatusBadRequest, "campo file requerido")
	}
	if fh.Size > maxUploadBytes {
		return draft.File{}, fiber.NewError(fiber.StatusBadRequest, "archivo demasiado grande")
	}
	content, err := readPart(fh)
	if err != nil {
		return draft.File{}, fiber.NewError(fiber.StatusBadRequest, "no se pudo leer el archivo")
	}
	return draft.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}
