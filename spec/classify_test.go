package spec

import "testing"

func TestClassifyDetail(t *testing.T) {
	tests := []struct {
		expr string
		want DetailLevel
	}{
		{"", DetailAbsent},
		{"   ", DetailAbsent},
		{"dm.ctx", DetailScope},
		{"om.state.status", DetailScope},
		{"[om.state, dm.cmd]", DetailScope},
		{"the reviewer must hold an admin role", DetailProse},
		{"reviewer holds admin role, granted recently", DetailProse},
		{"dm.ctx.reviewer.role == 'admin'", DetailExpression},
		{"dm.state.count > 0 && dm.cmd.amount <= dm.state.limit", DetailExpression},
		{"om.events.includes('RegistryApproved')", DetailExpression},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := ClassifyDetail(tt.expr); got != tt.want {
				t.Errorf("ClassifyDetail(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestScopePaths(t *testing.T) {
	if got := ScopePaths("[om.state, dm.cmd]"); len(got) != 2 || got[0] != "om.state" || got[1] != "dm.cmd" {
		t.Errorf("ScopePaths list form = %v", got)
	}
	if got := ScopePaths("dm.ctx"); len(got) != 1 || got[0] != "dm.ctx" {
		t.Errorf("ScopePaths scalar form = %v", got)
	}
	if got := ScopePaths("not a path"); got != nil {
		t.Errorf("ScopePaths prose = %v, want nil", got)
	}
}
