package service

import (
	"time"

	"timesheet-auditor/internal/dto"
	"timesheet-auditor/internal/model"
)

const (
	isoDate  = "2006-01-02"
	dayLabel = "02 Jan"
)

// Preview 转换为 JSON 预览响应
func (o *AuditOutcome) Preview() *dto.AuditPreviewResponse {
	res := o.Result
	resp := &dto.AuditPreviewResponse{
		RunID:          o.RunID,
		StartDate:      o.Start.Format(isoDate),
		Days:           make([]string, 0, len(res.Days)),
		RosterSheet:    o.Roster.Sheet,
		RosterFallback: o.Roster.Fallback,
		Employees:      len(res.Rows),
		ExceptionCount: len(res.Exceptions),
		RemarkCount:    len(res.Remarks),
		Unassigned:     res.Unassigned,
		Summary:        make([]dto.SummaryRowResponse, 0, len(res.Rows)),
		Exceptions:     make([]dto.ExceptionResponse, 0, len(res.Exceptions)),
		ReportFilename: o.Filename,
		Cached:         o.Cached,
	}

	for _, d := range res.Days {
		resp.Days = append(resp.Days, d.Format(dayLabel))
	}
	for _, e := range o.RowErrors {
		resp.RowErrors = append(resp.RowErrors, dto.RowErrorResponse{Row: e.Row, Reason: e.Reason})
	}
	for i, row := range res.Rows {
		marks := row.Values()
		values := make([]string, len(marks))
		for j, m := range marks {
			values[j] = m.String()
		}
		resp.Summary = append(resp.Summary, dto.SummaryRowResponse{No: i + 1, Employee: row.Employee, Values: values})
	}
	for _, x := range res.Exceptions {
		resp.Exceptions = append(resp.Exceptions, dto.ExceptionResponse{
			Employee: x.Employee,
			Date:     x.Date.Format(isoDate),
			Time:     x.Time.String(),
			Reason:   string(x.Reason),
		})
	}
	for _, r := range res.Remarks {
		resp.Remarks = append(resp.Remarks, dto.RemarkResponse{
			Employee:  r.Employee,
			Day:       r.Date.Format(dayLabel),
			Time:      r.Time.String(),
			HasLogin:  r.HasLogin,
			HasLogout: r.HasLogout,
			Remark:    r.Remark,
		})
	}
	return resp
}

// ToAuditRunResponse 运行记录 → 响应
func ToAuditRunResponse(run *model.AuditRun) dto.AuditRunResponse {
	return dto.AuditRunResponse{
		RunID:          run.AuditRunID,
		StartDate:      run.StartDate.Format(isoDate),
		TimesheetName:  run.TimesheetName,
		RosterSheet:    run.RosterSheet,
		RosterFallback: run.RosterFallback,
		OffsetHours:    run.OffsetHours,
		Employees:      run.Employees,
		Exceptions:     run.Exceptions,
		Remarks:        run.Remarks,
		Unassigned:     run.Unassigned,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
	}
}
