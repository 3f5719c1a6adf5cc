package schema

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
)

func decodeGeneric(t *testing.T, src string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("bad fixture %s: %v", src, err)
	}
	return v
}

func details(t *testing.T, err error) []errs.FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	e, ok := err.(*errs.Error)
	if !ok {
		t.Fatalf("expected *errs.Error, got %T", err)
	}
	if e.Kind != errs.KindValidation {
		t.Fatalf("expected validation kind, got %s", e.Kind)
	}
	return e.Details
}

func TestValidateFieldDefinitions_Valid(t *testing.T) {
	fields := decodeGeneric(t, `[
		{"name":"title","type":"string","required":true,"maxLength":120},
		{"name":"body","type":"markdown"},
		{"name":"rating","type":"number","min":0,"max":5},
		{"name":"category","type":"select","options":["tech","life"]},
		{"name":"published_on","type":"date"},
		{"name":"featured","type":"boolean","default":false}
	]`)
	if err := ValidateFieldDefinitions(fields); err != nil {
		t.Fatalf("expected valid definitions, got %v", err)
	}
}

func TestValidateFieldDefinitions_EmptyListIsValid(t *testing.T) {
	if err := ValidateFieldDefinitions([]interface{}{}); err != nil {
		t.Fatalf("expected empty list to be valid, got %v", err)
	}
}

func TestValidateFieldDefinitions_NotAList(t *testing.T) {
	for _, src := range []string{`{"name":"title"}`, `"title"`, `null`, `42`} {
		got := details(t, ValidateFieldDefinitions(decodeGeneric(t, src)))
		if len(got) != 0 {
			t.Errorf("%s: expected no details for a global failure, got %v", src, got)
		}
	}
}

func TestValidateFieldDefinitions_Duplicate(t *testing.T) {
	fields := decodeGeneric(t, `[
		{"name":"title","type":"string"},
		{"name":"slug","type":"string"},
		{"name":"title","type":"text"}
	]`)
	got := details(t, ValidateFieldDefinitions(fields))
	if len(got) != 1 {
		t.Fatalf("expected exactly one detail, got %v", got)
	}
	if got[0].Field != "fields[2].name" || !strings.Contains(got[0].Message, "title") {
		t.Errorf("unexpected detail %+v", got[0])
	}
}

func TestValidateFieldDefinitions_DuplicateIsCaseSensitive(t *testing.T) {
	fields := decodeGeneric(t, `[{"name":"Title","type":"string"},{"name":"title","type":"string"}]`)
	if err := ValidateFieldDefinitions(fields); err != nil {
		t.Fatalf("names differing in case must not collide: %v", err)
	}
}

func TestValidateFieldDefinitions_SelectOptions(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing", `[{"name":"c","type":"select"}]`},
		{"empty", `[{"name":"c","type":"select","options":[]}]`},
		{"not a list", `[{"name":"c","type":"select","options":"a,b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := details(t, ValidateFieldDefinitions(decodeGeneric(t, tt.src)))
			if len(got) != 1 || got[0].Field != "fields[0].options" {
				t.Fatalf("expected one options detail, got %v", got)
			}
		})
	}
}

func TestValidateFieldDefinitions_Accumulates(t *testing.T) {
	fields := decodeGeneric(t, `[
		{"type":"string"},
		{"name":"a","type":"colour"},
		{"name":"b"},
		{"name":"c","type":"select","options":[]},
		"not-an-object"
	]`)
	got := details(t, ValidateFieldDefinitions(fields))
	want := []string{"fields[0].name", "fields[1].type", "fields[2].type", "fields[3].options", "fields[4]"}
	if len(got) != len(want) {
		t.Fatalf("expected %d details, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].Field != w {
			t.Errorf("detail %d: expected field %s, got %s", i, w, got[i].Field)
		}
	}
}

func TestValidateFieldDefinitions_ConstraintShapes(t *testing.T) {
	fields := decodeGeneric(t, `[
		{"name":"a","type":"string","maxLength":-1},
		{"name":"b","type":"number","min":"low"},
		{"name":"c","type":"number","min":10,"max":1},
		{"name":"d","type":"string","required":"yes"}
	]`)
	got := details(t, ValidateFieldDefinitions(fields))
	want := []string{"fields[0].maxLength", "fields[1].min", "fields[2].max", "fields[3].required"}
	if len(got) != len(want) {
		t.Fatalf("expected %d details, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].Field != w {
			t.Errorf("detail %d: expected field %s, got %s", i, w, got[i].Field)
		}
	}
}

func TestValidateFieldDefinitions_YAMLIntegers(t *testing.T) {
	// yaml.v3 decodes numbers as int
	fields := []interface{}{
		map[string]interface{}{"name": "title", "type": "string", "maxLength": 40},
		map[string]interface{}{"name": "n", "type": "number", "min": 1, "max": 9},
	}
	if err := ValidateFieldDefinitions(fields); err != nil {
		t.Fatalf("expected int constraints to be accepted: %v", err)
	}
}

func TestDecodeFieldDefinitions(t *testing.T) {
	defs, err := DecodeFieldDefinitions([]byte(`[{"name":"title","label":"Title","type":"string","maxLength":5,"required":true}]`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(defs) != 1 || defs[0].Type != models.FieldTypeString || defs[0].MaxLength == nil || *defs[0].MaxLength != 5 {
		t.Fatalf("unexpected definitions %+v", defs)
	}

	if _, err := DecodeFieldDefinitions([]byte(`{"oops":`)); !errs.IsValidation(err) {
		t.Fatalf("expected validation error for malformed JSON, got %v", err)
	}

	defs, err = DecodeFieldDefinitions([]byte(`[]`))
	if err != nil || defs == nil || len(defs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v, %v", defs, err)
	}
}

func TestValidateFieldDefinitions_LabelMustBeString(t *testing.T) {
	got := details(t, ValidateFieldDefinitions(decodeGeneric(t, `[{"name":"a","type":"string","label":5}]`)))
	if len(got) != 1 || got[0].Field != "fields[0].label" {
		t.Fatalf("expected one label detail, got %v", got)
	}
}

func TestValidateFieldDefinitions_Defaults(t *testing.T) {
	valid := decodeGeneric(t, `[
		{"name":"a","type":"number","min":0,"default":"3"},
		{"name":"b","type":"string","maxLength":5,"default":"hello"},
		{"name":"c","type":"select","options":["x","y"],"default":"y"},
		{"name":"d","type":"date","default":"2024-01-31"},
		{"name":"e","type":"boolean","default":"yes"},
		{"name":"f","type":"text","default":null}
	]`)
	if err := ValidateFieldDefinitions(valid); err != nil {
		t.Fatalf("expected valid defaults, got %v", err)
	}

	invalid := decodeGeneric(t, `[
		{"name":"n","type":"number","default":"abc"},
		{"name":"s","type":"string","maxLength":2,"default":"hello"},
		{"name":"m","type":"number","max":1,"default":5},
		{"name":"c","type":"select","options":["x"],"default":"z"},
		{"name":"d","type":"date","default":"someday"},
		{"name":"t","type":"text","default":7}
	]`)
	got := details(t, ValidateFieldDefinitions(invalid))
	want := []string{"fields[0].default", "fields[1].default", "fields[2].default", "fields[3].default", "fields[4].default", "fields[5].default"}
	if len(got) != len(want) {
		t.Fatalf("expected %d details, got %v", len(want), got)
	}
	for i, w := range want {
		if got[i].Field != w {
			t.Errorf("detail %d: expected field %s, got %s", i, w, got[i].Field)
		}
	}
}

func TestValidateFieldDefinitions_DefaultSkippedWhenDefinitionBroken(t *testing.T) {
	// the broken options are the only problem worth reporting
	got := details(t, ValidateFieldDefinitions(decodeGeneric(t, `[{"name":"c","type":"select","options":[],"default":"x"}]`)))
	if len(got) != 1 || got[0].Field != "fields[0].options" {
		t.Fatalf("expected only the options detail, got %v", got)
	}
}

func TestDecodeFieldDefinitions_KeepsUnmodelledKeys(t *testing.T) {
	src := `[
		{"name":"title","type":"text","maxLength":"10","placeholder":"Say hi","helpText":"Shown below"},
		{"name":"rating","type":"number","min":1,"ui":{"widget":"stars"}}
	]`
	defs, err := DecodeFieldDefinitions([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if defs[0].MaxLength != nil || defs[0].Extra["maxLength"] != "10" {
		t.Fatalf("inapplicable constraint must be kept verbatim, got %+v", defs[0])
	}
	if defs[1].Min == nil || *defs[1].Min != 1 {
		t.Fatalf("typed constraint lost: %+v", defs[1])
	}

	out, err := json.Marshal(defs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !reflect.DeepEqual(decodeGeneric(t, string(out)), decodeGeneric(t, src)) {
		t.Fatalf("definitions not stored as given:\n got: %s\nwant: %s", out, src)
	}

	var back []models.FieldDefinition
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(back, defs) {
		t.Fatalf("round trip changed definitions\n got: %+v\nwant: %+v", back, defs)
	}
}
