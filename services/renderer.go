package services

import "lightingboq/engine"

// Renderer produces BOQ documents with maroto (PDF) and excelize (XLSX).
type Renderer struct {
	CompanyName string
}

func NewRenderer(companyName string) *Renderer {
	return &Renderer{CompanyName: companyName}
}

func (r *Renderer) RenderPDF(view engine.ExportView) ([]byte, error) {
	return GeneratePDF(BuildExportData(view, r.CompanyName))
}

func (r *Renderer) RenderExcel(view engine.ExportView) ([]byte, error) {
	return GenerateExcel(BuildExportData(view, r.CompanyName))
}
