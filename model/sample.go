package model

// SampleTasks returns the built-in demo rows. Each call returns a fresh slice.
func SampleTasks() []TaskRecord {
	return []TaskRecord{
		{
			RowNumber:       2,
			ID:              1,
			Title:           "làm sạch dữ liệu can phạm",
			Unit:            "PV06",
			StartDate:       "15/9/2025",
			EndDate:         "31/10/2025",
			Status:          StatusInProgress,
			ProgressPercent: 20,
			Note:            "đẩy nhanh tiến độ",
			Evaluation:      "chưa tốt",
		},
		{
			RowNumber:       3,
			ID:              2,
			Title:           "làm sạch dữ liệu người nước ngoài",
			Unit:            "PA08",
			StartDate:       "16/9/2025",
			EndDate:         "30/9/2025",
			Status:          StatusInProgress,
			ProgressPercent: 90,
			Note:            "Cần thêm phản hồi",
			Evaluation:      "Tốt",
		},
		{
			RowNumber:       4,
			ID:              3,
			Title:           "triển khai đường truyền cho công an các xã",
			Unit:            "PV01",
			StartDate:       "15/7/2025",
			EndDate:         "30/7/2025",
			Status:          StatusDone,
			ProgressPercent: 100,
			Note:            "Hoàn thành tiến độ",
			Evaluation:      "Tốt",
		},
	}
}
