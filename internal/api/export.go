package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/gin-gonic/gin"
)

// csvBOM lets Excel detect UTF-8 so the Vietnamese headers render correctly.
var csvBOM = []byte{0xEF, 0xBB, 0xBF}

var orderCSVHeader = []string{
	"Mã đơn hàng", "Khách hàng", "Sản phẩm", "Tạm tính", "Phí vận chuyển",
	"Thuế", "Giảm giá", "Tổng tiền", "Trạng thái", "Thanh toán", "Ngày đặt",
}

// exportOrdersCSV streams every order as a CSV document. encoding/csv quotes
// fields as needed, so product names containing commas survive intact.
func (h *Handler) exportOrdersCSV(c *gin.Context) {
	actor := actorFrom(c)
	orders, err := h.orders.ListAllOrders(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(csvBOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(orderCSVHeader); err != nil {
		respondError(c, err)
		return
	}
	for _, o := range orders {
		if err := w.Write(orderCSVRow(o)); err != nil {
			respondError(c, err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("don-hang-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func orderCSVRow(o models.Order) []string {
	names := make([]string, len(o.Items))
	for i, item := range o.Items {
		names[i] = fmt.Sprintf("%s x%d", item.Name, item.Quantity)
	}
	return []string{
		o.OrderNumber,
		o.UserID,
		strings.Join(names, "; "),
		fmt.Sprintf("%d", o.Subtotal),
		fmt.Sprintf("%d", o.Shipping),
		fmt.Sprintf("%d", o.Tax),
		fmt.Sprintf("%d", o.Discount),
		fmt.Sprintf("%d", o.Total),
		string(o.Status),
		string(o.PaymentStatus),
		o.CreatedAt.Format("02/01/2006 15:04"),
	}
}
