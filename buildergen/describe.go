package buildergen

// FieldView 字段的分类结果与生成的 setter，供 inspect 展示
type FieldView struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Declared string `json:"declared"`
	Slot     string `json:"slot"`
	Setter   string `json:"setter"`
	Param    string `json:"param"`
}

// RecordView 记录的构建器概览
type RecordView struct {
	Name        string      `json:"name"`
	Package     string      `json:"package"`
	File        string      `json:"file"`
	Builder     string      `json:"builder"`
	Constructor string      `json:"constructor"`
	Fields      []FieldView `json:"fields"`
	Error       string      `json:"error,omitempty"`
}

// Describe 描述将为记录生成的构建器，名字冲突等问题记录在 Error 中
func Describe(rec *Record, opts SynthOptions) RecordView {
	opts = opts.withDefaults()

	view := RecordView{
		Name:        rec.Name,
		Package:     rec.PackageName,
		File:        rec.FilePath,
		Builder:     rec.BuilderName(),
		Constructor: opts.Constructor,
		Fields:      make([]FieldView, 0, len(rec.Fields)),
	}
	for _, f := range rec.Fields {
		setter := rec.SetterName(f, opts.Prefix)
		view.Fields = append(view.Fields, FieldView{
			Name:     f.Name,
			Kind:     f.Class.Kind.String(),
			Declared: f.Type.String(),
			Slot:     "mo.Option[" + f.Class.Type.String() + "]",
			Setter:   setter,
			Param:    f.Class.Type.String(),
		})
	}
	if err := rec.Validate(opts); err != nil {
		view.Error = err.Error()
	}
	return view
}
