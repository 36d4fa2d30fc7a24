package model

import "time"

// DefaultBase is attached to records whose collaborator has no base in the reference table
const DefaultBase = "Sem Base"

// DateLayout is the calendar date format of the data column
const DateLayout = "2006-01-02"

// ── Column names ──

const (
	ColRecordID             = "id_registro"
	ColCollaboratorID       = "id_colaborador"
	ColName                 = "nome"
	ColDate                 = "data"
	ColEscala               = "escala"
	ColCodigoHorario        = "codigo_horario"
	ColDescricaoHorario     = "descricao_horario"
	ColInicio               = "inicio"
	ColTermino              = "termino"
	ColTotalHoras           = "total_horas"
	ColSituacao             = "situacao"
	ColTotalHorasOcorrencia = "total_horas_ocorrencia"
	ColJustificativa        = "justificativa"
	ColBase                 = "base"
)

// OccurrenceColumns is the schema order of the occurrence table, followed by the derived base
var OccurrenceColumns = []string{
	ColRecordID,
	ColCollaboratorID,
	ColName,
	ColDate,
	ColEscala,
	ColCodigoHorario,
	ColDescricaoHorario,
	ColInicio,
	ColTermino,
	ColTotalHoras,
	ColSituacao,
	ColTotalHorasOcorrencia,
	ColJustificativa,
	ColBase,
}

// SourceColumns are the columns selected from the occurrence table
var SourceColumns = OccurrenceColumns[:len(OccurrenceColumns)-1 : len(OccurrenceColumns)-1]

// Occurrence is one row of the occurrence table.
// Immutable once loaded; optional text fields are nil when absent or blank.
type Occurrence struct {
	RecordID             int64   `gorm:"column:id_registro;primaryKey"  mapstructure:"id_registro"            json:"id_registro"             validate:"required"`
	CollaboratorID       string  `gorm:"column:id_colaborador"          mapstructure:"id_colaborador"         json:"id_colaborador"          validate:"required"`
	Name                 string  `gorm:"column:nome"                    mapstructure:"nome"                   json:"nome"`
	Data                 string  `gorm:"column:data"                    mapstructure:"data"                   json:"data"                    validate:"required,isodate"`
	Escala               *string `gorm:"column:escala"                  mapstructure:"escala"                 json:"escala"`
	CodigoHorario        *string `gorm:"column:codigo_horario"          mapstructure:"codigo_horario"         json:"codigo_horario"`
	DescricaoHorario     *string `gorm:"column:descricao_horario"       mapstructure:"descricao_horario"      json:"descricao_horario"`
	Inicio               *string `gorm:"column:inicio"                  mapstructure:"inicio"                 json:"inicio"`
	Termino              *string `gorm:"column:termino"                 mapstructure:"termino"                json:"termino"`
	TotalHoras           *string `gorm:"column:total_horas"             mapstructure:"total_horas"            json:"total_horas"`
	Situacao             *string `gorm:"column:situacao"                mapstructure:"situacao"               json:"situacao"`
	TotalHorasOcorrencia *string `gorm:"column:total_horas_ocorrencia"  mapstructure:"total_horas_ocorrencia" json:"total_horas_ocorrencia"`
	Justificativa        *string `gorm:"column:justificativa"           mapstructure:"justificativa"          json:"justificativa"`

	// derived at load time
	Base string    `gorm:"-" mapstructure:"-" json:"base"`
	Date time.Time `gorm:"-" mapstructure:"-" json:"-"`
}

// TableName overrides the gorm table name
func (Occurrence) TableName() string { return "ocorrencias_ponto" }

// Field returns the value of a column by name; absent optional fields are nil
func (o *Occurrence) Field(col string) any {
	switch col {
	case ColRecordID:
		return o.RecordID
	case ColCollaboratorID:
		return o.CollaboratorID
	case ColName:
		return o.Name
	case ColDate:
		return o.Data
	case ColEscala:
		return deref(o.Escala)
	case ColCodigoHorario:
		return deref(o.CodigoHorario)
	case ColDescricaoHorario:
		return deref(o.DescricaoHorario)
	case ColInicio:
		return deref(o.Inicio)
	case ColTermino:
		return deref(o.Termino)
	case ColTotalHoras:
		return deref(o.TotalHoras)
	case ColSituacao:
		return deref(o.Situacao)
	case ColTotalHorasOcorrencia:
		return deref(o.TotalHorasOcorrencia)
	case ColJustificativa:
		return deref(o.Justificativa)
	case ColBase:
		return o.Base
	}
	return nil
}

// Status returns situacao, or "" when absent
func (o *Occurrence) Status() string {
	if o.Situacao == nil {
		return ""
	}
	return *o.Situacao
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Ativo is a row of the active-collaborator reference table
type Ativo struct {
	ID   string  `gorm:"column:id;primaryKey" mapstructure:"id"   json:"id"`
	Base *string `gorm:"column:base"          mapstructure:"base" json:"base"`
}

// TableName overrides the gorm table name
func (Ativo) TableName() string { return "ativos" }
