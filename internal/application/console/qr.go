package console

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/loyalty-console/internal/application/ports"
	"github.com/jhoicas/loyalty-console/internal/domain"
	"github.com/jhoicas/loyalty-console/internal/domain/entity"
)

// QRStep paso del asistente de cobro.
type QRStep string

const (
	QRStepScan   QRStep = "scan"
	QRStepCharge QRStep = "charge"
	QRStepDone   QRStep = "done"
)

// QRState copia de lectura del asistente.
type QRState struct {
	Step   QRStep                  `json:"step"`
	Scan   *entity.QRScanResult    `json:"scan,omitempty"`
	Result *entity.QRPaymentResult `json:"result,omitempty"`
}

// QRWizard cobro en dos pasos: escanear el código del cliente y luego cobrar.
// Un solo intento a la vez; no reintenta por su cuenta.
type QRWizard struct {
	api ports.APIClient

	mu     sync.Mutex
	step   QRStep
	scan   *entity.QRScanResult
	result *entity.QRPaymentResult
	busy   bool
	gen    uint64 // cambia con cada Reset; un intento de otra generación no se aplica
}

// NewQRWizard construye el asistente en el paso de escaneo.
func NewQRWizard(api ports.APIClient) *QRWizard {
	return &QRWizard{api: api, step: QRStepScan}
}

// State devuelve el paso actual y los datos obtenidos.
func (w *QRWizard) State() QRState {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := QRState{Step: w.step}
	if w.scan != nil {
		s := *w.scan
		st.Scan = &s
	}
	if w.result != nil {
		r := *w.result
		st.Result = &r
	}
	return st
}

// Reset vuelve al paso de escaneo. Un intento en curso termina contra la API pero
// su resultado ya no cambia el asistente.
func (w *QRWizard) Reset() {
	w.mu.Lock()
	w.step, w.scan, w.result = QRStepScan, nil, nil
	w.busy = false
	w.gen++
	w.mu.Unlock()
}

// Scan identifica al cliente dueño del código. Permitido mientras no se haya cobrado.
func (w *QRWizard) Scan(ctx context.Context, code string) (entity.QRScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return entity.QRScanResult{}, invalid("código QR requerido")
	}
	gen, _, err := w.begin(QRStepScan, QRStepCharge)
	if err != nil {
		return entity.QRScanResult{}, err
	}

	var res entity.QRScanResult
	err = call(ctx, w.api, http.MethodPost, "/qr-payments/scan", map[string]any{"code": code}, &res)

	w.mu.Lock()
	defer w.mu.Unlock()
	current := gen == w.gen
	if current {
		w.busy = false
	}
	if err != nil {
		return entity.QRScanResult{}, err
	}
	if res.Code == "" {
		res.Code = code
	}
	if current {
		w.scan, w.step = &res, QRStepCharge
	}
	return res, nil
}

// Charge cobra amount al cliente escaneado.
func (w *QRWizard) Charge(ctx context.Context, amt decimal.Decimal) (entity.QRPaymentResult, error) {
	if !amt.IsPositive() {
		return entity.QRPaymentResult{}, invalid("el monto debe ser mayor a cero")
	}
	gen, scan, err := w.begin(QRStepCharge)
	if err != nil {
		return entity.QRPaymentResult{}, err
	}

	body := map[string]any{"code": scan.Code, "customerId": scan.CustomerID, "amount": amount(amt)}
	var res entity.QRPaymentResult
	err = call(ctx, w.api, http.MethodPost, "/qr-payments/process", body, &res)

	w.mu.Lock()
	defer w.mu.Unlock()
	current := gen == w.gen
	if current {
		w.busy = false
	}
	if err != nil {
		return entity.QRPaymentResult{}, err
	}
	// el cobro ya ocurrió en la API: se devuelve aunque el asistente se haya reiniciado
	if current {
		w.result, w.step = &res, QRStepDone
	}
	return res, nil
}

// begin marca el asistente ocupado si el paso actual es uno de allowed. Devuelve la
// generación vigente y una copia del escaneo tomada bajo el mismo lock.
func (w *QRWizard) begin(allowed ...QRStep) (uint64, entity.QRScanResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return 0, entity.QRScanResult{}, domain.NewError(domain.KindAlreadyInProgress, "", 0, nil)
	}
	for _, s := range allowed {
		if w.step != s {
			continue
		}
		if s == QRStepCharge && w.scan == nil {
			break
		}
		w.busy = true
		var scan entity.QRScanResult
		if w.scan != nil {
			scan = *w.scan
		}
		return w.gen, scan, nil
	}
	if w.step == QRStepDone {
		return 0, entity.QRScanResult{}, invalid("el cobro ya se realizó; inicie uno nuevo")
	}
	return 0, entity.QRScanResult{}, invalid("escanee un código antes de cobrar")
}
