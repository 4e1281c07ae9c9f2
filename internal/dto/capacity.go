package dto

import "github.com/admVeloHub/front-console-sub000/internal/capacity"

// ── 容量规划 DTO ──

// SetParameterRequest 修改单个参数
type SetParameterRequest struct {
	Category string   `json:"category" binding:"required,oneof=weekdays saturday global"`
	Field    string   `json:"field"    binding:"required"`
	Value    *float64 `json:"value"    binding:"required"`
}

// SetParameterResponse 修改结果；Applied=false 表示输入被忽略
type SetParameterResponse struct {
	Applied    bool                        `json:"applied"`
	Parameters capacity.StaffingParameters `json:"parameters"`
}

// UploadSummary 单个上传文件的解析摘要
type UploadSummary struct {
	Filename      string              `json:"filename"`
	Records       int                 `json:"records"`
	Rejected      []capacity.RowError `json:"rejected"`
	HeaderSkipped bool                `json:"headerSkipped"`
}

// CalculateResponse 计算结果
type CalculateResponse struct {
	Report  *capacity.Report         `json:"report"`
	Uploads map[string]UploadSummary `json:"uploads"`
}
